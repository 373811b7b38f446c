package core

// DecisionResult represents the outcome of a business decision in a Decide function.
// This enables type-safe, functional programming style decision modeling.
//
// IMPORTANT: DecisionResult should only be constructed using the provided factory methods:
// SuccessDecision(settlement) or ErrorDecision(err).
type DecisionResult struct {
	Outcome    string // "success" or "error"
	Settlement Settlement
	Err        error
}

const (
	successOutcome = "success"
	errorOutcome   = "error"
)

// SuccessDecision creates a DecisionResult carrying the state changes to apply.
func SuccessDecision(settlement Settlement) DecisionResult {
	return DecisionResult{
		Outcome:    successOutcome,
		Settlement: settlement,
	}
}

// ErrorDecision creates a DecisionResult indicating a business rule violation. Nothing is applied.
func ErrorDecision(err error) DecisionResult {
	return DecisionResult{
		Outcome: errorOutcome,
		Err:     err,
	}
}

// HasChangesToApply returns true if the settlement must be written to the store.
func (r DecisionResult) HasChangesToApply() bool {
	return r.Outcome == successOutcome
}

// HasError returns the error if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.Outcome == errorOutcome {
		return r.Err
	}

	return nil
}

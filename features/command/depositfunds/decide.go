package depositfunds

import (
	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

// Snapshot is the locked state a deposit is decided on.
// Target is nil if the party does not exist.
type Snapshot struct {
	Target    *core.Party
	Liability core.Money
}

// Admit runs the checks that need no stored state.
// It returns nil if the command may proceed to the transaction.
func Admit(command Command) error {
	if command.CallerType != core.PartyTypeClient || command.CallerID != command.TargetID {
		return core.ErrForbidden
	}

	if !command.Amount.IsPositive() || !command.Amount.Equal(core.ToMoney(command.Amount)) {
		return core.ErrInvalidAmount
	}

	return nil
}

// Decide implements the business logic of depositing funds.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A client with a balance and an unpaid liability
//	WHEN: DepositFunds command is received
//	THEN: the amount is added to the client's balance
//	ERROR: Forbidden if the caller is not a client or not the target
//	ERROR: InvalidAmount if the amount is not positive or has more than two fractional digits
//	ERROR: NotFound if the target does not exist
//	ERROR: LimitExceeded if the amount is above 25% of the unpaid liability
func Decide(s Snapshot, command Command) core.DecisionResult {
	if err := Admit(command); err != nil {
		return core.ErrorDecision(err)
	}

	if s.Target == nil {
		return core.ErrorDecision(core.ErrNotFound)
	}

	if command.Amount.GreaterThan(core.DepositCeiling(s.Liability)) {
		return core.ErrorDecision(core.ErrLimitExceeded)
	}

	return core.SuccessDecision(core.Settlement{
		Kind: core.ReceiptKindDeposit,
		Postings: []core.Posting{
			{PartyID: s.Target.ID, Before: s.Target.Balance, After: s.Target.Balance.Add(command.Amount)},
		},
		Amount:    command.Amount,
		SettledAt: command.OccurredAt,
	})
}

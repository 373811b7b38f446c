package paywork

import (
	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

// Snapshot is the locked state a payment is decided on.
// WorkUnit is nil if it does not exist. Payer and Payee are only loaded when the payment can proceed.
type Snapshot struct {
	WorkUnit  *core.WorkUnit
	Agreement core.Agreement
	Payer     *core.Party
	Payee     *core.Party
}

// needsParties reports whether the decision depends on the party balances.
func (s Snapshot) needsParties(command Command) bool {
	return s.WorkUnit != nil && s.Agreement.PayerID == command.CallerID && !s.WorkUnit.IsPaid()
}

// Decide implements the business logic of paying for a work unit.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A work unit under an agreement between a payer and a payee
//	WHEN: PayWorkUnit command is received
//	THEN: price is moved from payer to payee and the work unit is marked as paid
//	ERROR: NotFound if the work unit does not exist
//	ERROR: Forbidden if the caller is not the payer of the agreement
//	ERROR: AlreadyPaid if the work unit was paid before
//	ERROR: InsufficientFunds if the payer's balance is lower than the price
func Decide(s Snapshot, command Command) core.DecisionResult {
	if s.WorkUnit == nil {
		return core.ErrorDecision(core.ErrNotFound)
	}

	if s.Agreement.PayerID != command.CallerID {
		return core.ErrorDecision(core.ErrForbidden)
	}

	if s.WorkUnit.IsPaid() {
		return core.ErrorDecision(core.ErrAlreadyPaid)
	}

	if s.Payer == nil || s.Payee == nil {
		return core.ErrorDecision(core.ErrNotFound)
	}

	price := s.WorkUnit.Price
	if !s.Payer.CanAfford(price) {
		return core.ErrorDecision(core.ErrInsufficientFunds)
	}

	return core.SuccessDecision(core.Settlement{
		Kind: core.ReceiptKindPayment,
		Postings: []core.Posting{
			{PartyID: s.Payer.ID, Before: s.Payer.Balance, After: s.Payer.Balance.Sub(price)},
			{PartyID: s.Payee.ID, Before: s.Payee.Balance, After: s.Payee.Balance.Add(price)},
		},
		WorkUnit:  s.WorkUnit.ID,
		Amount:    price,
		SettledAt: command.OccurredAt,
	})
}

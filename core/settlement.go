package core

import "github.com/shopspring/decimal"

// DepositCeilingRatio is the share of the outstanding unpaid liability a client may deposit at once.
var DepositCeilingRatio = decimal.New(25, -2)

// DepositCeiling returns the maximum amount a client with the given unpaid liability may deposit.
// Fractions of a cent are cut off, the ceiling never exceeds the exact quarter of the liability.
func DepositCeiling(unpaidLiability Money) Money {
	return unpaidLiability.Mul(DepositCeilingRatio).RoundFloor(moneyScale)
}

// Posting is a single balance change of one party.
// Before is the balance the decision was made on, the store applies the change only if it still matches.
type Posting struct {
	PartyID PartyID
	Before  Money
	After   Money
}

// Delta returns the signed amount of the posting.
func (p Posting) Delta() Money {
	return p.After.Sub(p.Before)
}

// Settlement describes all state changes a successful decision requires.
type Settlement struct {
	Kind      ReceiptKind
	Postings  []Posting
	WorkUnit  WorkUnitID // zero when no work unit is settled
	Amount    Money
	SettledAt Timestamp
}

// SettlesWorkUnit reports whether the settlement marks a work unit as paid.
func (s Settlement) SettlesWorkUnit() bool {
	return s.WorkUnit != 0
}

// PostingFor returns the posting for the given party.
func (s Settlement) PostingFor(partyID PartyID) (Posting, bool) {
	for _, posting := range s.Postings {
		if posting.PartyID == partyID {
			return posting, true
		}
	}

	return Posting{}, false
}

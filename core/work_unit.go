package core

import "time"

// PaymentState is the settlement state of a work unit.
// Storage keeps a nullable flag, NULL and false both translate to Unpaid.
type PaymentState int

const (
	Unpaid PaymentState = iota
	Paid
)

// PaymentStateFromFlag translates the nullable storage flag into a PaymentState.
func PaymentStateFromFlag(valid, paid bool) PaymentState {
	if valid && paid {
		return Paid
	}

	return Unpaid
}

// String returns "paid" or "unpaid".
func (s PaymentState) String() string {
	if s == Paid {
		return "paid"
	}

	return "unpaid"
}

// WorkUnit is a billable unit of work performed under one agreement.
type WorkUnit struct {
	ID          WorkUnitID
	AgreementID AgreementID
	Description string
	Price       Money
	Paid        PaymentState
	PaymentDate *time.Time
	CreatedAt   Timestamp
	UpdatedAt   Timestamp
}

// IsPaid reports whether the work unit is settled.
func (w WorkUnit) IsPaid() bool {
	return w.Paid == Paid
}

package core

import "github.com/google/uuid"

// ReceiptKind tells payment receipts apart from deposit receipts.
type ReceiptKind string

const (
	ReceiptKindPayment ReceiptKind = "payment"
	ReceiptKindDeposit ReceiptKind = "deposit"
)

// Receipt confirms a completed payment or deposit.
type Receipt struct {
	ID             uuid.UUID
	Kind           ReceiptKind
	PartyID        PartyID // payer of a payment, target of a deposit
	CounterpartyID PartyID // payee of a payment, zero for deposits
	WorkUnitID     WorkUnitID
	Amount         Money
	Balance        Money // resulting balance of PartyID
	IssuedAt       Timestamp
}

// BuildReceipt creates a Receipt from an applied settlement.
func BuildReceipt(id uuid.UUID, partyID PartyID, settlement Settlement) Receipt {
	receipt := Receipt{
		ID:         id,
		Kind:       settlement.Kind,
		PartyID:    partyID,
		WorkUnitID: settlement.WorkUnit,
		Amount:     settlement.Amount,
		IssuedAt:   settlement.SettledAt,
	}

	for _, posting := range settlement.Postings {
		if posting.PartyID == partyID {
			receipt.Balance = posting.After
			continue
		}

		receipt.CounterpartyID = posting.PartyID
	}

	return receipt
}

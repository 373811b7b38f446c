package ledger

import (
	"context"
	"time"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

// Reader serves the query façade and the reporting engine.
// All methods honor the ConsistencyLevel carried by the context.
type Reader interface {
	// FindParty returns ErrRowNotFound for unknown ids.
	FindParty(ctx context.Context, partyID core.PartyID) (core.Party, error)

	// ListAgreements returns the non-terminated agreements the party participates in, ordered by id.
	ListAgreements(ctx context.Context, partyID core.PartyID) ([]core.Agreement, error)

	// FindAgreement returns the agreement with its work units ordered by id.
	// It returns ErrRowNotFound if the agreement does not exist or the party does not participate in it.
	FindAgreement(ctx context.Context, agreementID core.AgreementID, partyID core.PartyID) (core.AgreementWithWorkUnits, error)

	// ListUnpaidWorkUnits returns unpaid work units under in_progress agreements the party participates in, ordered by id.
	ListUnpaidWorkUnits(ctx context.Context, partyID core.PartyID) ([]core.WorkUnit, error)

	// ProfessionEarnings sums the prices of all work units of in_progress agreements created within the window,
	// grouped by the payee's profession. Agreements without work units do not contribute.
	ProfessionEarnings(ctx context.Context, window core.TimeWindow) ([]core.ProfessionEarnings, error)

	// ClientPayments sums the prices of paid work units created within the window, grouped by payer,
	// ordered by total descending then party id ascending, capped to limit.
	ClientPayments(ctx context.Context, window core.TimeWindow, limit int) ([]core.ClientTotal, error)
}

// Tx is a read-modify-write unit of work. Locks are held until the transaction ends.
type Tx interface {
	// LockWorkUnit locks the work unit row and returns it with its agreement.
	// It returns ErrRowNotFound for unknown ids.
	LockWorkUnit(ctx context.Context, workUnitID core.WorkUnitID) (core.WorkUnit, core.Agreement, error)

	// LockParties locks the party rows in ascending id order and returns the ones that exist.
	// It must be called at most once per transaction.
	LockParties(ctx context.Context, partyIDs ...core.PartyID) (map[core.PartyID]core.Party, error)

	// UnpaidLiability sums the prices of unpaid work units under all agreements where the party is the payer.
	UnpaidLiability(ctx context.Context, payerID core.PartyID) (core.Money, error)

	// UpdateBalance overwrites the balance only if it still equals expected, otherwise ErrConcurrencyConflict.
	UpdateBalance(ctx context.Context, partyID core.PartyID, expected, next core.Money) error

	// MarkWorkUnitPaid performs the one-way unpaid to paid transition, otherwise ErrConcurrencyConflict.
	MarkWorkUnitPaid(ctx context.Context, workUnitID core.WorkUnitID, paidAt time.Time) error
}

// TxFunc is the body of a transaction. Returning an error rolls back everything.
type TxFunc func(ctx context.Context, tx Tx) error

// TxRunner runs a TxFunc inside a transaction on the primary database.
type TxRunner interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// Provisioner creates records out-of-band. The returned records carry their assigned ids and timestamps.
type Provisioner interface {
	CreateParty(ctx context.Context, party core.Party) (core.Party, error)
	CreateAgreement(ctx context.Context, agreement core.Agreement) (core.Agreement, error)
	CreateWorkUnit(ctx context.Context, workUnit core.WorkUnit) (core.WorkUnit, error)
}

// Store combines all capabilities of an engine.
type Store interface {
	Reader
	TxRunner
	Provisioner
}

// ValidateParty checks a party before it is provisioned.
func ValidateParty(party core.Party) error {
	if !party.Type.Valid() || party.Balance.IsNegative() || party.FirstName == "" {
		return ErrInvalidRecord
	}

	return nil
}

// ValidateAgreement checks an agreement before it is provisioned. A party cannot contract with itself.
func ValidateAgreement(agreement core.Agreement) error {
	if !agreement.Status.Valid() || agreement.PayerID == 0 || agreement.PayeeID == 0 || agreement.PayerID == agreement.PayeeID {
		return ErrInvalidRecord
	}

	return nil
}

// ValidateWorkUnit checks a work unit before it is provisioned.
func ValidateWorkUnit(workUnit core.WorkUnit) error {
	if !workUnit.Price.IsPositive() || workUnit.AgreementID == 0 {
		return ErrInvalidRecord
	}

	return nil
}

package core

// AgreementStatus is the lifecycle state of an agreement.
type AgreementStatus string

const (
	AgreementStatusNew        AgreementStatus = "new"
	AgreementStatusInProgress AgreementStatus = "in_progress"
	AgreementStatusTerminated AgreementStatus = "terminated"
)

// Valid reports whether s is one of the known statuses.
func (s AgreementStatus) Valid() bool {
	switch s {
	case AgreementStatusNew, AgreementStatusInProgress, AgreementStatusTerminated:
		return true
	default:
		return false
	}
}

// Agreement binds one payer to one payee.
type Agreement struct {
	ID        AgreementID
	Terms     string
	Status    AgreementStatus
	PayerID   PartyID
	PayeeID   PartyID
	CreatedAt Timestamp
	UpdatedAt Timestamp
}

// Involves reports whether the party is the payer or the payee of the agreement.
func (a Agreement) Involves(partyID PartyID) bool {
	return a.PayerID == partyID || a.PayeeID == partyID
}

// IsActive reports whether the agreement is not terminated.
func (a Agreement) IsActive() bool {
	return a.Status != AgreementStatusTerminated
}

// IsInProgress reports whether work is currently performed under the agreement.
func (a Agreement) IsInProgress() bool {
	return a.Status == AgreementStatusInProgress
}

// AgreementWithWorkUnits is an agreement together with all its work units.
type AgreementWithWorkUnits struct {
	Agreement
	WorkUnits []WorkUnit
}

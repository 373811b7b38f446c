package core

// PartyType tells payers apart from payees.
type PartyType string

const (
	// PartyTypeClient is a payer-capable party.
	PartyTypeClient PartyType = "client"

	// PartyTypeContractor is a payee.
	PartyTypeContractor PartyType = "contractor"
)

// Valid reports whether t is one of the known party types.
func (t PartyType) Valid() bool {
	return t == PartyTypeClient || t == PartyTypeContractor
}

// Party is a participant of the ledger holding a non-negative balance.
type Party struct {
	ID         PartyID
	FirstName  string
	LastName   string
	Profession string
	Balance    Money
	Type       PartyType
	CreatedAt  Timestamp
	UpdatedAt  Timestamp
}

// IsClient reports whether the party may pay for work and deposit funds.
func (p Party) IsClient() bool {
	return p.Type == PartyTypeClient
}

// FullName joins first and last name.
func (p Party) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}

	return p.FirstName + " " + p.LastName
}

// CanAfford reports whether the balance covers the given amount.
func (p Party) CanAfford(amount Money) bool {
	return p.Balance.GreaterThanOrEqual(amount)
}

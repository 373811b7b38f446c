package listagreements

import (
	"time"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

// AgreementInfo is one listed agreement.
type AgreementInfo struct {
	ID        core.AgreementID     `json:"id"`
	Terms     string               `json:"terms"`
	Status    core.AgreementStatus `json:"status"`
	PayerID   core.PartyID         `json:"payerId"`
	PayeeID   core.PartyID         `json:"payeeId"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// Agreements represents the query result.
type Agreements struct {
	Agreements []AgreementInfo `json:"agreements"`
	Count      int             `json:"count"`
}

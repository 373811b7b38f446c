package getagreement

import (
	"time"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

// WorkUnitInfo is one work unit of the agreement.
type WorkUnitInfo struct {
	ID          core.WorkUnitID `json:"id"`
	Description string          `json:"description"`
	Price       core.Money      `json:"price"`
	Paid        bool            `json:"paid"`
	PaymentDate *time.Time      `json:"paymentDate"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// AgreementDetails represents the query result.
type AgreementDetails struct {
	ID        core.AgreementID     `json:"id"`
	Terms     string               `json:"terms"`
	Status    core.AgreementStatus `json:"status"`
	PayerID   core.PartyID         `json:"payerId"`
	PayeeID   core.PartyID         `json:"payeeId"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
	WorkUnits []WorkUnitInfo       `json:"workUnits"`
}

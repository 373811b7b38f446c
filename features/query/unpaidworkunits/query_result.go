package unpaidworkunits

import (
	"time"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

// WorkUnitInfo is one unpaid work unit.
type WorkUnitInfo struct {
	ID          core.WorkUnitID  `json:"id"`
	AgreementID core.AgreementID `json:"agreementId"`
	Description string           `json:"description"`
	Price       core.Money       `json:"price"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// UnpaidWorkUnits represents the query result.
type UnpaidWorkUnits struct {
	WorkUnits []WorkUnitInfo `json:"workUnits"`
	Total     core.Money     `json:"total"`
	Count     int            `json:"count"`
}

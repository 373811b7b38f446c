package unpaidworkunits

import (
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

// ProjectUnpaidWorkUnits keeps the unpaid work units and sums their prices.
// The store already restricts them to in_progress agreements of the caller.
func ProjectUnpaidWorkUnits(workUnits []core.WorkUnit) UnpaidWorkUnits {
	infos := make([]WorkUnitInfo, 0, len(workUnits))
	total := decimal.Zero

	for _, w := range workUnits {
		if w.IsPaid() {
			continue
		}

		infos = append(infos, WorkUnitInfo{
			ID:          w.ID,
			AgreementID: w.AgreementID,
			Description: w.Description,
			Price:       w.Price,
			CreatedAt:   w.CreatedAt,
		})
		total = total.Add(w.Price)
	}

	return UnpaidWorkUnits{
		WorkUnits: infos,
		Total:     total,
		Count:     len(infos),
	}
}

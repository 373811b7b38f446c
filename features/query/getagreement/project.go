package getagreement

import (
	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

// ProjectAgreementDetails builds the details view.
// It returns core.ErrNotFound if the caller is neither payer nor payee.
func ProjectAgreementDetails(agreement core.AgreementWithWorkUnits, callerID core.PartyID) (AgreementDetails, error) {
	if !agreement.Involves(callerID) {
		return AgreementDetails{}, core.ErrNotFound
	}

	workUnits := make([]WorkUnitInfo, 0, len(agreement.WorkUnits))
	for _, w := range agreement.WorkUnits {
		workUnits = append(workUnits, WorkUnitInfo{
			ID:          w.ID,
			Description: w.Description,
			Price:       w.Price,
			Paid:        w.IsPaid(),
			PaymentDate: w.PaymentDate,
			CreatedAt:   w.CreatedAt,
		})
	}

	return AgreementDetails{
		ID:        agreement.ID,
		Terms:     agreement.Terms,
		Status:    agreement.Status,
		PayerID:   agreement.PayerID,
		PayeeID:   agreement.PayeeID,
		CreatedAt: agreement.CreatedAt,
		UpdatedAt: agreement.UpdatedAt,
		WorkUnits: workUnits,
	}, nil
}

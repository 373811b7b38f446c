package listagreements

import (
	"cmp"
	"slices"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

// ProjectAgreements keeps the active agreements the caller participates in, ordered by id.
func ProjectAgreements(agreements []core.Agreement, callerID core.PartyID) Agreements {
	infos := make([]AgreementInfo, 0, len(agreements))

	for _, a := range agreements {
		if !a.Involves(callerID) || !a.IsActive() {
			continue
		}

		infos = append(infos, AgreementInfo{
			ID:        a.ID,
			Terms:     a.Terms,
			Status:    a.Status,
			PayerID:   a.PayerID,
			PayeeID:   a.PayeeID,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		})
	}

	slices.SortFunc(infos, func(a, b AgreementInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return Agreements{
		Agreements: infos,
		Count:      len(infos),
	}
}

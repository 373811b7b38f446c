package bestclients

import (
	"slices"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

// ProjectBestClients ranks client totals and caps them to the limit.
// This is a pure function with no side effects.
//
// Query Logic:
//
//	GIVEN: Paid totals per payer within the window
//	WHEN: BestClients query is executed
//	THEN: at most limit clients are returned, highest total first
//	TIES: the lower party id ranks first
func ProjectBestClients(totals []core.ClientTotal, limit int) BestClients {
	ranked := slices.Clone(totals)

	slices.SortFunc(ranked, func(a, b core.ClientTotal) int {
		if c := b.TotalPaid.Cmp(a.TotalPaid); c != 0 {
			return c
		}

		switch {
		case a.PartyID < b.PartyID:
			return -1
		case a.PartyID > b.PartyID:
			return 1
		default:
			return 0
		}
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	clients := make([]ClientInfo, 0, len(ranked))
	for _, total := range ranked {
		clients = append(clients, ClientInfo{
			ID:        total.PartyID,
			FirstName: total.FirstName,
			LastName:  total.LastName,
			TotalPaid: total.TotalPaid,
		})
	}

	return BestClients{
		Clients: clients,
		Count:   len(clients),
	}
}

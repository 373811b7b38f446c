package bestprofession

import (
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

// ProjectBestProfession picks the profession with the highest earnings.
// This is a pure function with no side effects.
//
// Query Logic:
//
//	GIVEN: Earnings per payee profession within the window
//	WHEN: BestProfession query is executed
//	THEN: the profession with the highest total is returned
//	TIES: the alphabetically first profession wins
//	EMPTY: Found is false and TotalEarned is zero
func ProjectBestProfession(earnings []core.ProfessionEarnings) BestProfession {
	best := BestProfession{TotalEarned: decimal.Zero}

	for _, e := range earnings {
		if !best.Found || e.Total.GreaterThan(best.TotalEarned) ||
			(e.Total.Equal(best.TotalEarned) && e.Profession < best.Profession) {

			best = BestProfession{Found: true, Profession: e.Profession, TotalEarned: e.Total}
		}
	}

	return best
}

package bestprofession_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/bestprofession"
)

func Test_ProjectBestProfession_PicksTheHighestTotal(t *testing.T) {
	// arrange
	earnings := []core.ProfessionEarnings{
		{Profession: "Designer", Total: core.MustParseMoney("100")},
		{Profession: "Programmer", Total: core.MustParseMoney("300")},
		{Profession: "Fighter", Total: core.MustParseMoney("299.99")},
	}

	// act
	result := bestprofession.ProjectBestProfession(earnings)

	// assert
	assert.True(t, result.Found)
	assert.Equal(t, "Programmer", result.Profession)
	assert.True(t, core.MustParseMoney("300").Equal(result.TotalEarned))
}

func Test_ProjectBestProfession_BreaksTiesByName(t *testing.T) {
	// arrange
	earnings := []core.ProfessionEarnings{
		{Profession: "Musician", Total: core.MustParseMoney("200")},
		{Profession: "Hacker", Total: core.MustParseMoney("200")},
	}

	// act
	result := bestprofession.ProjectBestProfession(earnings)

	// assert
	assert.Equal(t, "Hacker", result.Profession)
}

func Test_ProjectBestProfession_ReportsNotFound_WhenThereAreNoEarnings(t *testing.T) {
	// act
	result := bestprofession.ProjectBestProfession(nil)

	// assert
	assert.False(t, result.Found)
	assert.Empty(t, result.Profession)
	assert.True(t, result.TotalEarned.IsZero())
}

package bestclients_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/bestclients"
)

func Test_ProjectBestClients_RanksByTotalThenByID(t *testing.T) {
	// arrange
	totals := []core.ClientTotal{
		{PartyID: 3, FirstName: "C", LastName: "Client", TotalPaid: core.MustParseMoney("200")},
		{PartyID: 1, FirstName: "A", LastName: "Client", TotalPaid: core.MustParseMoney("100")},
		{PartyID: 2, FirstName: "B", LastName: "Client", TotalPaid: core.MustParseMoney("200")},
	}

	// act
	result := bestclients.ProjectBestClients(totals, 3)

	// assert
	assert.Equal(t, 3, result.Count)
	assert.Equal(t, core.PartyID(2), result.Clients[0].ID)
	assert.Equal(t, core.PartyID(3), result.Clients[1].ID)
	assert.Equal(t, core.PartyID(1), result.Clients[2].ID)
}

func Test_ProjectBestClients_CapsToTheLimit(t *testing.T) {
	// arrange
	totals := []core.ClientTotal{
		{PartyID: 1, TotalPaid: core.MustParseMoney("1")},
		{PartyID: 2, TotalPaid: core.MustParseMoney("2")},
		{PartyID: 3, TotalPaid: core.MustParseMoney("3")},
	}

	// act
	result := bestclients.ProjectBestClients(totals, 2)

	// assert
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, core.PartyID(3), result.Clients[0].ID)
}

func Test_ProjectBestClients_ReturnsAnEmptyList_WhenNobodyPaid(t *testing.T) {
	// act
	result := bestclients.ProjectBestClients(nil, bestclients.DefaultLimit)

	// assert
	assert.NotNil(t, result.Clients)
	assert.Zero(t, result.Count)
}

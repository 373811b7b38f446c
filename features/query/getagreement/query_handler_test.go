package getagreement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/getagreement"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger/memoryengine"
	"github.com/AntonStoeckl/agreement-ledger-go/testutil/helper"
)

func Test_QueryHandler_Handle_ReturnsTheAgreementWithItsWorkUnits(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewStore()
	f := helper.NewFixtures(t, store)

	harry := f.GivenClient("Harry", "100")
	linus := f.GivenContractor("Linus", "Programmer", "0")
	agreement := f.GivenAgreement(harry, linus, core.AgreementStatusInProgress)
	unpaid := f.GivenUnpaidWorkUnit(agreement, "201")
	paidAt := time.Date(2020, 8, 15, 19, 11, 26, 0, time.UTC)
	paid := f.GivenPaidWorkUnit(agreement, "200", paidAt)

	handler := getagreement.NewQueryHandler(store)

	for _, caller := range []core.Party{harry, linus} {
		t.Run(caller.FirstName, func(t *testing.T) {
			// act
			result, err := handler.Handle(ctx, getagreement.BuildQuery(agreement.ID, caller.ID))

			// assert
			require.NoError(t, err)
			assert.Equal(t, agreement.ID, result.ID)
			assert.Equal(t, core.AgreementStatusInProgress, result.Status)
			require.Len(t, result.WorkUnits, 2)

			assert.Equal(t, unpaid.ID, result.WorkUnits[0].ID)
			assert.False(t, result.WorkUnits[0].Paid)
			assert.Nil(t, result.WorkUnits[0].PaymentDate)

			assert.Equal(t, paid.ID, result.WorkUnits[1].ID)
			assert.True(t, result.WorkUnits[1].Paid)
			require.NotNil(t, result.WorkUnits[1].PaymentDate)
			assert.Equal(t, paidAt, *result.WorkUnits[1].PaymentDate)
		})
	}
}

func Test_QueryHandler_Handle_HidesAgreementsFromNonParticipants(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewStore()
	f := helper.NewFixtures(t, store)

	harry := f.GivenClient("Harry", "100")
	robot := f.GivenClient("Robot", "100")
	linus := f.GivenContractor("Linus", "Programmer", "0")
	agreement := f.GivenAgreement(harry, linus, core.AgreementStatusInProgress)

	handler := getagreement.NewQueryHandler(store)

	// act
	_, foreignErr := handler.Handle(ctx, getagreement.BuildQuery(agreement.ID, robot.ID))
	_, missingErr := handler.Handle(ctx, getagreement.BuildQuery(999, harry.ID))

	// assert
	assert.ErrorIs(t, foreignErr, core.ErrNotFound)
	assert.ErrorIs(t, missingErr, core.ErrNotFound)
}

func Test_QueryHandler_Handle_ReturnsTerminatedAgreementsToParticipants(t *testing.T) {
	// arrange
	store := memoryengine.NewStore()
	f := helper.NewFixtures(t, store)
	harry := f.GivenClient("Harry", "100")
	john := f.GivenContractor("John", "Musician", "0")
	agreement := f.GivenAgreement(harry, john, core.AgreementStatusTerminated)

	// act
	result, err := getagreement.NewQueryHandler(store).Handle(context.Background(), getagreement.BuildQuery(agreement.ID, john.ID))

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.AgreementStatusTerminated, result.Status)
	assert.Empty(t, result.WorkUnits)
}

type consistencyRecordingStore struct {
	*memoryengine.Store
	level ledger.ConsistencyLevel
}

func (s *consistencyRecordingStore) FindAgreement(
	ctx context.Context,
	agreementID core.AgreementID,
	partyID core.PartyID,
) (core.AgreementWithWorkUnits, error) {

	s.level = ledger.GetConsistencyLevel(ctx)

	return s.Store.FindAgreement(ctx, agreementID, partyID)
}

func Test_QueryHandler_Handle_ReadsFromThePrimary(t *testing.T) {
	// arrange
	store := &consistencyRecordingStore{Store: memoryengine.NewStore(), level: ledger.EventualConsistency}

	// act
	_, err := getagreement.NewQueryHandler(store).Handle(
		ledger.WithEventualConsistency(context.Background()),
		getagreement.BuildQuery(1, 1),
	)

	// assert
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, ledger.StrongConsistency, store.level)
}

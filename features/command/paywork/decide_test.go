package paywork_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/features/command/paywork"
)

const (
	payerID core.PartyID = 1
	payeeID core.PartyID = 6
)

func givenSnapshot(payerBalance, payeeBalance, price string, paid core.PaymentState) paywork.Snapshot {
	return paywork.Snapshot{
		WorkUnit: &core.WorkUnit{ID: 7, AgreementID: 2, Price: core.MustParseMoney(price), Paid: paid},
		Agreement: core.Agreement{
			ID: 2, Status: core.AgreementStatusInProgress, PayerID: payerID, PayeeID: payeeID,
		},
		Payer: &core.Party{ID: payerID, Balance: core.MustParseMoney(payerBalance), Type: core.PartyTypeClient},
		Payee: &core.Party{ID: payeeID, Balance: core.MustParseMoney(payeeBalance), Type: core.PartyTypeContractor},
	}
}

func Test_Decide_Success_MovesThePriceFromPayerToPayee(t *testing.T) {
	// arrange
	now := time.Now()
	snapshot := givenSnapshot("110", "5", "100", core.Unpaid)
	command := paywork.BuildCommand(7, payerID, now)

	// act
	result := paywork.Decide(snapshot, command)

	// assert
	require.True(t, result.HasChangesToApply())
	require.NoError(t, result.HasError())

	settlement := result.Settlement
	assert.Equal(t, core.ReceiptKindPayment, settlement.Kind)
	assert.Equal(t, core.WorkUnitID(7), settlement.WorkUnit)
	assert.True(t, core.MustParseMoney("100").Equal(settlement.Amount))
	assert.Equal(t, core.ToTimestamp(now), settlement.SettledAt)

	payer, ok := settlement.PostingFor(payerID)
	require.True(t, ok)
	assert.True(t, core.MustParseMoney("10").Equal(payer.After))

	payee, ok := settlement.PostingFor(payeeID)
	require.True(t, ok)
	assert.True(t, core.MustParseMoney("105").Equal(payee.After))

	assert.True(t, payer.Delta().Add(payee.Delta()).IsZero(), "a payment must conserve money")
}

func Test_Decide_Success_WhenBalanceEqualsPrice(t *testing.T) {
	// arrange
	snapshot := givenSnapshot("100", "0", "100", core.Unpaid)

	// act
	result := paywork.Decide(snapshot, paywork.BuildCommand(7, payerID, time.Now()))

	// assert
	require.True(t, result.HasChangesToApply())
	payer, _ := result.Settlement.PostingFor(payerID)
	assert.True(t, payer.After.IsZero())
}

func Test_Decide_Error_WhenWorkUnitDoesNotExist(t *testing.T) {
	// act
	result := paywork.Decide(paywork.Snapshot{}, paywork.BuildCommand(7, payerID, time.Now()))

	// assert
	assert.False(t, result.HasChangesToApply())
	assert.ErrorIs(t, result.HasError(), core.ErrNotFound)
}

func Test_Decide_Error_WhenCallerIsNotThePayer(t *testing.T) {
	testCases := []struct {
		name     string
		callerID core.PartyID
	}{
		{name: "payee", callerID: payeeID},
		{name: "unrelated party", callerID: 42},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := paywork.Decide(givenSnapshot("110", "5", "100", core.Unpaid), paywork.BuildCommand(7, tc.callerID, time.Now()))

			assert.ErrorIs(t, result.HasError(), core.ErrForbidden)
		})
	}
}

func Test_Decide_Error_WhenAlreadyPaid(t *testing.T) {
	// arrange
	snapshot := givenSnapshot("110", "5", "100", core.Paid)

	// act
	result := paywork.Decide(snapshot, paywork.BuildCommand(7, payerID, time.Now()))

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrAlreadyPaid)
}

func Test_Decide_Error_WhenPayerCannotAffordThePrice(t *testing.T) {
	// arrange
	snapshot := givenSnapshot("99.99", "5", "100", core.Unpaid)

	// act
	result := paywork.Decide(snapshot, paywork.BuildCommand(7, payerID, time.Now()))

	// assert
	assert.False(t, result.HasChangesToApply())
	assert.ErrorIs(t, result.HasError(), core.ErrInsufficientFunds)
}

func Test_Decide_ChecksRulesInOrder(t *testing.T) {
	// arrange: paid, unaffordable and called by the payee at the same time
	snapshot := givenSnapshot("1", "5", "100", core.Paid)

	// act
	byPayee := paywork.Decide(snapshot, paywork.BuildCommand(7, payeeID, time.Now()))
	byPayer := paywork.Decide(snapshot, paywork.BuildCommand(7, payerID, time.Now()))

	// assert
	assert.ErrorIs(t, byPayee.HasError(), core.ErrForbidden)
	assert.ErrorIs(t, byPayer.HasError(), core.ErrAlreadyPaid)
}

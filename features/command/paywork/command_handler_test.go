package paywork_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/features/command/paywork"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger/memoryengine"
	"github.com/AntonStoeckl/agreement-ledger-go/shared/shell"
	"github.com/AntonStoeckl/agreement-ledger-go/testutil/helper"
)

type scenario struct {
	store     *memoryengine.Store
	handler   paywork.CommandHandler
	payer     core.Party
	payee     core.Party
	agreement core.Agreement
	fixtures  helper.Fixtures
}

func givenScenario(t *testing.T, payerBalance, payeeBalance string) scenario {
	t.Helper()

	store := memoryengine.NewStore()
	fixtures := helper.NewFixtures(t, store)
	payer := fixtures.GivenClient("Harry", payerBalance)
	payee := fixtures.GivenContractor("Linus", "Programmer", payeeBalance)
	agreement := fixtures.GivenAgreement(payer, payee, core.AgreementStatusInProgress)

	return scenario{
		store:     store,
		handler:   paywork.NewCommandHandler(store, paywork.WithRetryOptions(shell.WithBaseDelay(time.Millisecond))),
		payer:     payer,
		payee:     payee,
		agreement: agreement,
		fixtures:  fixtures,
	}
}

func balanceOf(t *testing.T, store ledger.Reader, partyID core.PartyID) core.Money {
	t.Helper()

	party, err := store.FindParty(context.Background(), partyID)
	require.NoError(t, err)

	return party.Balance
}

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// arrange
	ctx := context.Background()
	s := givenScenario(t, "110", "20")
	workUnit := s.fixtures.GivenUnpaidWorkUnit(s.agreement, "100")
	paidAt := time.Date(2020, 8, 15, 19, 11, 26, 0, time.UTC)

	// act
	result, err := s.handler.Handle(ctx, paywork.BuildCommand(workUnit.ID, s.payer.ID, paidAt))

	// assert
	require.NoError(t, err)
	assert.False(t, result.Rejected)
	assert.Equal(t, 1, result.RetryAttempts)

	receipt := result.Receipt
	assert.Equal(t, core.ReceiptKindPayment, receipt.Kind)
	assert.Equal(t, s.payer.ID, receipt.PartyID)
	assert.Equal(t, s.payee.ID, receipt.CounterpartyID)
	assert.Equal(t, workUnit.ID, receipt.WorkUnitID)
	assert.True(t, core.MustParseMoney("10").Equal(receipt.Balance))

	assert.True(t, core.MustParseMoney("10").Equal(balanceOf(t, s.store, s.payer.ID)))
	assert.True(t, core.MustParseMoney("120").Equal(balanceOf(t, s.store, s.payee.ID)))

	agreement, err := s.store.FindAgreement(ctx, s.agreement.ID, s.payer.ID)
	require.NoError(t, err)
	require.Len(t, agreement.WorkUnits, 1)
	assert.True(t, agreement.WorkUnits[0].IsPaid())
	require.NotNil(t, agreement.WorkUnits[0].PaymentDate)
	assert.Equal(t, paidAt, *agreement.WorkUnits[0].PaymentDate)
}

func Test_CommandHandler_Handle_LeavesBalancesUnchanged_WhenFundsAreInsufficient(t *testing.T) {
	// arrange
	ctx := context.Background()
	s := givenScenario(t, "50", "20")
	workUnit := s.fixtures.GivenUnpaidWorkUnit(s.agreement, "100")

	// act
	result, err := s.handler.Handle(ctx, paywork.BuildCommand(workUnit.ID, s.payer.ID, time.Now()))

	// assert
	assert.ErrorIs(t, err, core.ErrInsufficientFunds)
	assert.True(t, result.Rejected)
	assert.Equal(t, shell.ErrorKindInsufficientFunds, shell.ErrorKindFrom(err))
	assert.True(t, core.MustParseMoney("50").Equal(balanceOf(t, s.store, s.payer.ID)))
	assert.True(t, core.MustParseMoney("20").Equal(balanceOf(t, s.store, s.payee.ID)))

	unpaid, err := s.store.ListUnpaidWorkUnits(ctx, s.payer.ID)
	require.NoError(t, err)
	assert.Len(t, unpaid, 1)
}

func Test_CommandHandler_Handle_Rejections(t *testing.T) {
	// arrange
	ctx := context.Background()
	s := givenScenario(t, "500", "20")
	workUnit := s.fixtures.GivenUnpaidWorkUnit(s.agreement, "100")
	_, err := s.handler.Handle(ctx, paywork.BuildCommand(workUnit.ID, s.payer.ID, time.Now()))
	require.NoError(t, err)

	testCases := []struct {
		name     string
		command  paywork.Command
		expected error
	}{
		{name: "unknown work unit", command: paywork.BuildCommand(999, s.payer.ID, time.Now()), expected: core.ErrNotFound},
		{name: "payee tries to pay", command: paywork.BuildCommand(workUnit.ID, s.payee.ID, time.Now()), expected: core.ErrForbidden},
		{name: "second payment", command: paywork.BuildCommand(workUnit.ID, s.payer.ID, time.Now()), expected: core.ErrAlreadyPaid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result, err := s.handler.Handle(ctx, tc.command)

			// assert
			assert.ErrorIs(t, err, tc.expected)
			assert.True(t, result.Rejected)
		})
	}

	assert.True(t, core.MustParseMoney("400").Equal(balanceOf(t, s.store, s.payer.ID)))
}

func Test_CommandHandler_Handle_PaysExactlyOnce_WhenCalledConcurrently(t *testing.T) {
	// arrange
	ctx := context.Background()
	s := givenScenario(t, "1000", "0")
	workUnit := s.fixtures.GivenUnpaidWorkUnit(s.agreement, "100")

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup

	// act
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.handler.Handle(ctx, paywork.BuildCommand(workUnit.ID, s.payer.ID, time.Now()))
		}(i)
	}
	wg.Wait()

	// assert
	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, core.ErrAlreadyPaid)
	}

	assert.Equal(t, 1, successes)
	assert.True(t, core.MustParseMoney("900").Equal(balanceOf(t, s.store, s.payer.ID)))
	assert.True(t, core.MustParseMoney("100").Equal(balanceOf(t, s.store, s.payee.ID)))
}

func Test_CommandHandler_Handle_SerializesPayments_SharingAPayer(t *testing.T) {
	// arrange
	ctx := context.Background()
	s := givenScenario(t, "250", "0")

	const workUnits = 5
	ids := make([]core.WorkUnitID, workUnits)
	for i := range ids {
		ids[i] = s.fixtures.GivenUnpaidWorkUnit(s.agreement, "100").ID
	}

	errs := make([]error, workUnits)
	var wg sync.WaitGroup

	// act
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id core.WorkUnitID) {
			defer wg.Done()
			_, errs[i] = s.handler.Handle(ctx, paywork.BuildCommand(id, s.payer.ID, time.Now()))
		}(i, id)
	}
	wg.Wait()

	// assert
	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, core.ErrInsufficientFunds)
	}

	assert.Equal(t, 2, successes)
	payerBalance := balanceOf(t, s.store, s.payer.ID)
	payeeBalance := balanceOf(t, s.store, s.payee.ID)
	assert.True(t, core.MustParseMoney("50").Equal(payerBalance))
	assert.False(t, payerBalance.IsNegative())
	assert.True(t, payerBalance.Add(payeeBalance).Equal(core.MustParseMoney("250")), "money must be conserved")
}

// conflictingTxRunner always fails like a database that keeps aborting the transaction.
type conflictingTxRunner struct {
	calls int
}

func (r *conflictingTxRunner) WithinTx(context.Context, ledger.TxFunc) error {
	r.calls++
	return ledger.ErrConcurrencyConflict
}

func Test_CommandHandler_Handle_ReportsRetryExhaustion(t *testing.T) {
	// arrange
	runner := &conflictingTxRunner{}
	handler := paywork.NewCommandHandler(runner, paywork.WithRetryOptions(
		shell.WithMaxAttempts(3),
		shell.WithBaseDelay(time.Millisecond),
	))

	// act
	result, err := handler.Handle(context.Background(), paywork.BuildCommand(7, payerID, time.Now()))

	// assert
	assert.ErrorIs(t, err, shell.ErrConflictRetryExhausted)
	assert.Equal(t, shell.ErrorKindConflictRetryExhausted, shell.ErrorKindFrom(err))
	assert.Equal(t, 3, runner.calls)
	assert.Equal(t, 3, result.RetryAttempts)
	assert.True(t, result.RetriesExhausted)
	assert.False(t, result.Rejected)
}

func Test_CommandHandler_Handle_ReportsStoreFailures(t *testing.T) {
	// arrange
	ctx := context.Background()
	s := givenScenario(t, "110", "20")
	workUnit := s.fixtures.GivenUnpaidWorkUnit(s.agreement, "100")
	s.store.SetFailure(assert.AnError)

	// act
	result, err := s.handler.Handle(ctx, paywork.BuildCommand(workUnit.ID, s.payer.ID, time.Now()))

	// assert
	assert.ErrorIs(t, err, ledger.ErrQueryingFailed)
	assert.Equal(t, shell.ErrorKindStoreUnavailable, shell.ErrorKindFrom(err))
	assert.False(t, result.Rejected)
	assert.Equal(t, 1, result.RetryAttempts)
}

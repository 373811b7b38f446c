package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
	"github.com/AntonStoeckl/agreement-ledger-go/shared/shell"
	"github.com/AntonStoeckl/agreement-ledger-go/testutil/helper"
)

func Test_RetryWithExponentialBackoff_Success_NoRetries(t *testing.T) {
	// arrange
	callCount := 0
	fn := func(_ context.Context) error {
		callCount++
		return nil
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(context.Background(), fn)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, time.Duration(0), meta.TotalDelay)
	assert.Equal(t, "none", meta.LastErrorType)
	assert.False(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_RetriesOnConcurrencyConflict(t *testing.T) {
	// arrange
	callCount := 0
	fn := func(_ context.Context) error {
		callCount++
		if callCount < 3 {
			return ledger.ErrConcurrencyConflict
		}
		return nil
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(context.Background(), fn, shell.WithBaseDelay(time.Millisecond))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.Greater(t, meta.TotalDelay, time.Duration(0))
	assert.Equal(t, "none", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_FailsFast_OnBusinessErrors(t *testing.T) {
	// arrange
	callCount := 0
	fn := func(_ context.Context) error {
		callCount++
		return core.ErrInsufficientFunds
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(context.Background(), fn)

	// assert
	assert.ErrorIs(t, err, core.ErrInsufficientFunds)
	assert.NotErrorIs(t, err, shell.ErrConflictRetryExhausted)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, "other", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_ReportsExhaustion_AfterMaxAttempts(t *testing.T) {
	// arrange
	callCount := 0
	fn := func(_ context.Context) error {
		callCount++
		return ledger.ErrConcurrencyConflict
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(
		context.Background(),
		fn,
		shell.WithMaxAttempts(3),
		shell.WithBaseDelay(time.Millisecond),
		shell.WithJitterFactor(0),
	)

	// assert
	assert.ErrorIs(t, err, shell.ErrConflictRetryExhausted)
	assert.ErrorIs(t, err, ledger.ErrConcurrencyConflict)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.True(t, meta.RetriesExhausted)
	assert.Equal(t, 3*time.Millisecond, meta.TotalDelay)
	assert.Equal(t, "concurrency_conflict", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_StopsWaiting_WhenContextIsCanceled(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	fn := func(_ context.Context) error {
		cancel()
		return ledger.ErrConcurrencyConflict
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(ctx, fn, shell.WithBaseDelay(time.Second))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, "context_canceled", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_RejectsInvalidOptions(t *testing.T) {
	testCases := []struct {
		name     string
		option   shell.RetryOption
		expected error
	}{
		{name: "zero attempts", option: shell.WithMaxAttempts(0), expected: shell.ErrInvalidMaxAttempts},
		{name: "negative delay", option: shell.WithBaseDelay(-time.Millisecond), expected: shell.ErrNegativeBaseDelay},
		{name: "jitter above one", option: shell.WithJitterFactor(1.5), expected: shell.ErrInvalidJitterFactor},
		{name: "nil collector", option: shell.WithMetrics(nil, "PayWorkUnit"), expected: shell.ErrNilMetricsCollector},
		{name: "empty command type", option: shell.WithMetrics(helper.NewMetricsCollectorSpy(), ""), expected: shell.ErrEmptyCommandType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := shell.RetryWithExponentialBackoff(context.Background(), func(context.Context) error {
				return nil
			}, tc.option)

			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func Test_RetryWithExponentialBackoff_RecordsRetryMetrics(t *testing.T) {
	// arrange
	metrics := helper.NewMetricsCollectorSpy()
	fn := func(_ context.Context) error {
		return ledger.ErrConcurrencyConflict
	}

	// act
	_, err := shell.RetryWithExponentialBackoff(
		context.Background(),
		fn,
		shell.WithMaxAttempts(2),
		shell.WithBaseDelay(time.Millisecond),
		shell.WithMetrics(metrics, "PayWorkUnit"),
	)

	// assert
	require.Error(t, err)
	assert.True(t, metrics.HasCounterRecordForMetric(shell.CommandHandlerRetriesMetric).
		WithLabel("command_type", "PayWorkUnit").
		WithLabel("error_type", "concurrency_conflict").
		Assert())
	assert.True(t, metrics.HasDurationRecordForMetric(shell.CommandHandlerRetryDelayMetric).Assert())
	assert.True(t, metrics.HasCounterRecordForMetric(shell.CommandHandlerMaxRetriesReachedMetric).
		WithLabel("final_error_type", "concurrency_conflict").
		Assert())
}

func Test_ErrorKindFrom(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected shell.ErrorKind
	}{
		{name: "nil", err: nil, expected: shell.ErrorKindNone},
		{name: "not found", err: core.ErrNotFound, expected: shell.ErrorKindNotFound},
		{name: "forbidden", err: core.ErrForbidden, expected: shell.ErrorKindForbidden},
		{name: "invalid amount", err: core.ErrInvalidAmount, expected: shell.ErrorKindInvalidAmount},
		{name: "already paid", err: core.ErrAlreadyPaid, expected: shell.ErrorKindAlreadyPaid},
		{name: "insufficient funds", err: core.ErrInsufficientFunds, expected: shell.ErrorKindInsufficientFunds},
		{name: "limit exceeded", err: core.ErrLimitExceeded, expected: shell.ErrorKindLimitExceeded},
		{name: "invalid argument", err: core.ErrInvalidArgument, expected: shell.ErrorKindInvalidArgument},
		{name: "unknown caller", err: core.ErrUnknownCaller, expected: shell.ErrorKindUnauthorized},
		{
			name:     "retry exhausted",
			err:      errors.Join(shell.ErrConflictRetryExhausted, ledger.ErrConcurrencyConflict),
			expected: shell.ErrorKindConflictRetryExhausted,
		},
		{
			name:     "driver failure",
			err:      errors.Join(ledger.ErrQueryingFailed, errors.New("connection refused")),
			expected: shell.ErrorKindStoreUnavailable,
		},
		{name: "anything else", err: errors.New("boom"), expected: shell.ErrorKindStoreUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, shell.ErrorKindFrom(tc.err))
		})
	}
}

func Test_OutcomeFrom_DropsData_OnError(t *testing.T) {
	// act
	success := shell.OutcomeFrom("receipt", nil)
	failure := shell.OutcomeFrom("receipt", core.ErrAlreadyPaid)

	// assert
	assert.Equal(t, shell.Outcome{OK: true, Data: "receipt"}, success)
	assert.Equal(t, shell.Outcome{OK: false, ErrorKind: shell.ErrorKindAlreadyPaid}, failure)
}

func Test_ResultFrom_MarksBusinessErrorsAsRejected(t *testing.T) {
	// arrange
	meta := shell.RetryMetrics{Attempts: 2, LastErrorType: "other"}

	// act
	rejected := shell.ResultFrom(core.Receipt{}, meta, core.ErrForbidden)
	failed := shell.ResultFrom(core.Receipt{}, meta, ledger.ErrQueryingFailed)

	// assert
	assert.True(t, rejected.Rejected)
	assert.Equal(t, 2, rejected.RetryAttempts)
	assert.False(t, failed.Rejected)
}

func Test_StatusFrom(t *testing.T) {
	assert.Equal(t, shell.StatusSuccess, shell.StatusFrom(nil))
	assert.Equal(t, shell.StatusRejected, shell.StatusFrom(core.ErrLimitExceeded))
	assert.Equal(t, shell.StatusCanceled, shell.StatusFrom(context.Canceled))
	assert.Equal(t, shell.StatusTimeout, shell.StatusFrom(context.DeadlineExceeded))
	assert.Equal(t, shell.StatusConcurrencyConflict, shell.StatusFrom(shell.ErrConflictRetryExhausted))
	assert.Equal(t, shell.StatusError, shell.StatusFrom(ledger.ErrCommitTxFailed))
}

package shell

import (
	"time"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

// HandlerResult represents the outcome of a command handler execution.
// It carries the receipt of an applied settlement and the retry metadata,
// without coupling the handler to specific observability implementations.
type HandlerResult struct {
	// Receipt is set only when the settlement was applied.
	Receipt core.Receipt

	// Rejected is true when a business rule refused the command. Nothing was written.
	Rejected bool

	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in retry backoff delays.
	TotalRetryDelay time.Duration

	// LastErrorType describes the type of the final error encountered during retries.
	// Values: "none" (success), "concurrency_conflict", "context_canceled", "context_deadline_exceeded", "other"
	LastErrorType string

	// RetriesExhausted indicates whether max retry attempts were reached with concurrency conflicts.
	RetriesExhausted bool
}

// NewSuccessResult creates a HandlerResult for an applied settlement.
func NewSuccessResult(receipt core.Receipt, retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		Receipt:          receipt,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}

// NewRejectedResult creates a HandlerResult for a command refused by a business rule.
func NewRejectedResult(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		Rejected:         true,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}

// NewErrorResult creates a HandlerResult for failed operations.
// This is used when the handler returns an error but still wants to report retry metadata.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}

// ResultFrom picks the matching constructor for the handler's final error.
func ResultFrom(receipt core.Receipt, retryMetrics RetryMetrics, err error) HandlerResult {
	switch {
	case err == nil:
		return NewSuccessResult(receipt, retryMetrics)
	case core.IsBusinessError(err):
		return NewRejectedResult(retryMetrics)
	default:
		return NewErrorResult(retryMetrics)
	}
}

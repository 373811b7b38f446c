package config

import (
	"github.com/AntonStoeckl/agreement-ledger-go/shared/shell"
)

// RetryOptions translates the retry section into shell retry options.
func (c RetryConfig) RetryOptions() []shell.RetryOption {
	return []shell.RetryOption{
		shell.WithMaxAttempts(c.MaxAttempts),
		shell.WithBaseDelay(c.BaseDelay),
		shell.WithJitterFactor(c.JitterFactor),
	}
}

package postgresengine

import (
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger/postgresengine/internal/adapters"
)

// IsolationLevel selects the isolation of settlement transactions.
type IsolationLevel = adapters.IsolationLevel

const (
	ReadCommitted  = adapters.ReadCommitted
	RepeatableRead = adapters.RepeatableRead
	Serializable   = adapters.Serializable
)

// ParseIsolationLevel maps "read_committed", "repeatable_read" and "serializable" to an IsolationLevel.
func ParseIsolationLevel(s string) (IsolationLevel, error) {
	switch s {
	case isolationNameReadCommitted:
		return ReadCommitted, nil
	case isolationNameRepeatable, "":
		return RepeatableRead, nil
	case isolationNameSerializable:
		return Serializable, nil
	default:
		return RepeatableRead, ErrUnknownIsolationLevel
	}
}

// Option defines a functional option for configuring the Store.
type Option func(*Store) error

// WithTableNames sets the table names for parties, agreements and work units.
func WithTableNames(parties, agreements, workUnits string) Option {
	return func(s *Store) error {
		if parties == "" || agreements == "" || workUnits == "" {
			return ledger.ErrEmptyTableNameSupplied
		}

		s.tables = tableNames{parties: parties, agreements: agreements, workUnits: workUnits}

		return nil
	}
}

// WithIsolationLevel sets the isolation level of transactions started by WithinTx.
func WithIsolationLevel(level IsolationLevel) Option {
	return func(s *Store) error {
		s.isolation = level
		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Row counts, durations, concurrency conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger ledger.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// The collector will receive operation durations, returned row counts, concurrency conflicts and database errors.
func WithMetrics(collector ledger.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// A span is created for every store operation and transaction.
func WithTracing(collector ledger.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// The contextual logger will receive log messages with context information including
// automatic trace/span correlation when tracing is enabled.
func WithContextualLogger(logger ledger.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// Package postgresengine provides a PostgreSQL implementation of the ledger store.
//
// This package implements ledger.Store using PostgreSQL as the backend. It supports
// multiple database adapters (pgx.Pool, sql.DB, sqlx.DB) and builds all SQL with goqu.
//
// Settlement transactions run at REPEATABLE READ by default. The work unit row is locked with
// SELECT ... FOR UPDATE OF the work unit only, party rows are locked in ascending id order, and
// every write is a compare-and-swap UPDATE. Serialization failures (SQLSTATE 40001) and detected
// deadlocks (40P01) are reported as ledger.ErrConcurrencyConflict after rollback.
//
// Key features:
//   - Multiple database adapter support with optional read replica
//   - Configurable isolation level and table names
//   - Optional logging, metrics, tracing and contextual logging
//
// Example usage:
//
//	store, err := postgresengine.NewStoreFromPGXPool(pool,
//		postgresengine.WithLogger(slog.Default()),
//	)
//	err = store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error { ... })
package postgresengine

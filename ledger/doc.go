// Package ledger provides the storage contracts of the agreement ledger
// together with the store-level errors and observability interfaces shared by all engines.
//
// A store offers three capabilities:
//   - Reader: consistent reads for the query façade and the reporting engine
//   - TxRunner: a read-modify-write transaction (Tx) with row locks for settlement and deposits
//   - Provisioner: out-of-band creation of parties, agreements and work units (seeding, tests)
//
// Tx writes are compare-and-swap updates. A balance is only overwritten when it still holds
// the value the decision was based on, and a work unit is only marked paid when it is still unpaid.
// A mismatch, a serialization failure, or a detected deadlock surfaces as ErrConcurrencyConflict
// after the transaction was rolled back, so callers can retry the whole unit of work.
//
// Engines:
//   - postgresengine: PostgreSQL through pgx, database/sql or sqlx
//   - memoryengine: in-process maps with per-row locks
//
// Common usage pattern:
//
//	err := store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
//		workUnit, agreement, err := tx.LockWorkUnit(ctx, workUnitID)
//		if err != nil {
//			return err
//		}
//		parties, err := tx.LockParties(ctx, agreement.PayerID, agreement.PayeeID)
//		// decide ...
//		return tx.UpdateBalance(ctx, agreement.PayerID, before, after)
//	})
package ledger

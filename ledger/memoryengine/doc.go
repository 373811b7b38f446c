// Package memoryengine is an in-process implementation of ledger.Store.
//
// Records live in maps guarded by a RWMutex. Transactions take per-row locks (work units and parties)
// that honor context cancellation, buffer their writes, and apply them on commit. Compare-and-swap
// semantics match the Postgres engine, so command handlers behave identically on both engines.
//
// The engine backs feature tests, the demo server, and `ledger seed --memory`.
package memoryengine

// Package helper provides test doubles for the observability interfaces of the ledger:
// a metrics collector spy, a tracing collector spy, and a slog handler spy.
//
// The spies are safe for concurrent use so they can be shared by handlers running in parallel goroutines.
package helper

// Package oteladapters provides OpenTelemetry implementations of the ledger observability interfaces.
//
// The adapters plug into ledger/postgresengine and the shared/shell/observable wrappers:
//
//	store, err := postgresengine.NewStoreFromPGXPool(
//		pool,
//		postgresengine.WithMetrics(oteladapters.NewMetricsCollector(meter)),
//		postgresengine.WithTracing(oteladapters.NewTracingCollector(tracer)),
//		postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("ledger")),
//	)
package oteladapters

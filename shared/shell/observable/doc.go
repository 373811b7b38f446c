// Package observable provides wrappers that instrument command and query handlers
// with metrics, tracing and logging while the handlers themselves stay free of observability code.
//
// Wrappers are applied at wiring time:
//
//	coreHandler := paywork.NewCommandHandler(store)
//
//	handler, err := observable.NewCommandWrapper[paywork.Command](
//		coreHandler,
//		observable.WithCommandMetrics[paywork.Command](metricsCollector),
//		observable.WithCommandTracing[paywork.Command](tracingCollector),
//		observable.WithCommandContextualLogging[paywork.Command](contextualLogger),
//	)
//
// Business rule violations are recorded with the "rejected" status and logged at info level.
// Only store failures and retry exhaustion are logged as errors.
package observable

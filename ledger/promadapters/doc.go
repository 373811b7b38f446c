// Package promadapters provides a Prometheus implementation of ledger.MetricsCollector.
//
// Instruments are created on first use. The label names of an instrument are fixed by the
// labels of its first observation; later observations fill missing labels with an empty
// value and drop unknown ones, so the store and the handler wrappers can share one collector.
package promadapters

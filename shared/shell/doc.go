// Package shell is the imperative shell around the functional core of the ledger.
//
// It holds what every feature slice shares: the handler contracts, retry with exponential backoff
// for concurrency conflicts, the HandlerResult carrying receipts and retry metadata, the mapping of
// errors onto the structured Outcome returned to callers, and the observability helpers used by the
// wrappers in package observable.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell

// Package core contains the domain model of the agreement ledger:
// parties, the agreements between them, and the billable work units performed under those agreements.
//
// The package is the functional core of the application. It holds value types, the business
// sentinel errors, and the pure decision result used by the Decide functions of the command slices.
// Nothing in here talks to a database, a clock, or a logger.
//
// Money is represented with shopspring/decimal so that balances and prices keep two fractional
// digits exactly, the same precision the relational schema stores (NUMERIC(12,2)).
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core

// Package paywork implements the Pay for a Work Unit use case.
//
// A client pays for one unpaid work unit of an agreement it is the payer of. The price moves from the
// payer's balance to the payee's balance and the work unit is marked as paid, all inside one transaction.
//
// The CommandHandler loads the work unit and both parties under row locks, delegates the decision to the
// pure Decide function, and applies the resulting settlement with compare-and-swap writes.
// Concurrency conflicts retry the whole transaction with exponential backoff.
package paywork

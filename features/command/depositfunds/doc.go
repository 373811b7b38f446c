// Package depositfunds implements the Deposit Funds use case.
//
// A client tops up its own balance. The amount may not exceed a quarter of the client's unpaid
// liability, the summed price of all unpaid work units under agreements where the client pays.
//
// Caller checks and amount validation run before any row is locked. The CommandHandler then locks
// the target party, reads the liability in the same transaction and delegates to the pure Decide function.
package depositfunds

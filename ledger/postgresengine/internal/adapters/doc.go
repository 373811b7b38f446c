// Package adapters provide database adapter implementations for the PostgreSQL ledger store.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, allowing the store to work with any supported connection type.
//
// Reads honor the consistency level carried by the context: eventual reads go to the replica
// when one is configured. Transactions always run on the primary.
package adapters

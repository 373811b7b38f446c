// Package config provides the application configuration and the database connection
// builders for the agreement ledger.
//
// Configuration is layered: built-in defaults, an optional TOML file, an optional .env file
// and finally LEDGER_* environment variables. The connection builders create pgx pools,
// sql.DB or sqlx.DB handles for the postgresengine with sensible pool settings.
//
// This package is part of the shell (infrastructure) layer.
package config

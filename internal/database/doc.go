// Package database turns store configuration into a store.Opener.
//
// Drivers:
//   - duckdb: local analytical file (default)
//   - postgres: PostgreSQL or TimescaleDB server reached through a URL connection string
package database

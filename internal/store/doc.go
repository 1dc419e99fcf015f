// Package store implements the OHLCV table backends used by the merge engine.
//
// Backends:
//   - DuckDB: single local file, the default
//   - Postgres: shared server (PostgreSQL or TimescaleDB)
//
// Both enforce UNIQUE(symbol, timestamp) and insert with ON CONFLICT DO NOTHING,
// so a stored record is never updated or duplicated.
package store

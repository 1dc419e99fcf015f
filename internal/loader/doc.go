// Package loader implements the incremental merge engine.
//
// The Engine:
//   - Opens one store session per call and always releases it
//   - Ensures the OHLCV table exists with the expected columns
//   - Merges a batch in bulk (one staged, conflict-tolerant insert) or row by row
//   - Never updates a stored record: the first write of a (symbol, timestamp) wins
//
// Bulk mode is all-or-nothing: one invalid record rejects the batch before the store
// is touched. Row mode rejects records individually and keeps going.
package loader

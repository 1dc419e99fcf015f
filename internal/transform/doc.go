// Package transform normalizes raw provider series into canonical records.
//
// Normalize:
//   - Parses date labels and coerces numeric strings, treating bad values as missing
//   - Keeps a trailing window of days relative to the wall clock
//   - Forward-fills then back-fills gaps within each symbol
//   - Drops rows that cannot form a valid record
package transform

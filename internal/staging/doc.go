// Package staging reads and writes the parquet files exchanged between stages.
//
// Files:
//   - raw: provider bars as strings, one row per (symbol, date label)
//   - processed: canonical records with typed columns
//
// Writes land in a temporary file in the target directory and are renamed into
// place, so readers never observe a partially written file.
package staging

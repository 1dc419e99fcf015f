// Package pipeline wires the extract, transform and load stages.
//
// Stages hand off through parquet files so each can run as its own command:
//   - Extract: provider -> raw file
//   - Transform: raw file -> processed file
//   - Load: processed file -> store
//
// Run chains all three in one process and Seed loads a CSV of canonical rows.
// A stage that produces nothing leaves the next stage's input file untouched.
package pipeline

// Package app wires configuration, logging, metrics and the pipeline for the
// command-line tools.
//
// Commands:
//   - extract: fetch daily bars into the raw staging file
//   - transform: normalize the raw file into the processed file
//   - load: merge the processed file into the store
//   - pipeline: all three stages in one process
//   - seed: merge a CSV file into the store
package app

// Package metrics provides Prometheus metrics for monitoring pipeline runs.
//
// Key metrics:
//   - Merge rows attempted, inserted and rejected per mode
//   - Merge latency and failures by reason
//   - Fetch outcomes per symbol call
//   - Records written per staging file
//
// The CLIs are short-lived, so metrics are exported with WriteTextfile for the
// node_exporter textfile collector instead of an HTTP endpoint.
package metrics

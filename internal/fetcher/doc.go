// Package fetcher implements the Extract stage.
//
// The Fetcher:
//   - Requests the daily series for each configured symbol, one at a time
//   - Waits a fixed delay after every successful call to respect the provider quota
//   - Skips symbols the provider rejects or that fail in transport
//   - Stops at the first rate-limit signal and keeps what was already fetched
package fetcher

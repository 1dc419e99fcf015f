// Package api provides the Alpha Vantage REST client.
//
// Endpoint:
//   - https://www.alphavantage.co/query?function=TIME_SERIES_DAILY
//
// Responses use numbered JSON keys ("1. open"); the client strips the numbers before
// decoding. Rate-limit notices arrive as HTTP 200 bodies carrying a "Note" or
// "Information" field instead of data, so callers must inspect the returned error type:
//   - *RateLimitError: stop issuing requests for this run
//   - *SymbolError: the provider rejected this symbol
//   - anything else: transport or decoding failure
package api

// Package model defines shared data types used across the OHLCV pipeline.
//
// Conventions:
//   - Timestamps: naive trading days, stored as UTC midnight
//   - Prices: float64, strictly positive once validated
//   - Volume: int64 share count
//   - Identity: (symbol, timestamp) is unique in the store
package model

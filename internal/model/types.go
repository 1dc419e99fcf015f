package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DateLayout is the provider's date label format and the canonical day format.
const DateLayout = "2006-01-02"

// -----------------------------------------------------------------------------
// Canonical Types
// -----------------------------------------------------------------------------

// Record is one daily OHLCV bar for a symbol.
type Record struct {
	Timestamp time.Time // Trading day (UTC midnight)
	Symbol    string    // Uppercase instrument identifier (e.g., "AAPL")
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Key identifies a record in the store.
type Key struct {
	Symbol    string
	Timestamp time.Time
}

func (k Key) String() string {
	return k.Symbol + "@" + k.Timestamp.Format(DateLayout)
}

// Key returns the (symbol, timestamp) identity of the record.
func (r Record) Key() Key {
	return Key{Symbol: r.Symbol, Timestamp: r.Timestamp.UTC()}
}

// Validate reports why a record cannot be stored, or nil if it can.
func (r Record) Validate() error {
	if r.Symbol == "" {
		return errors.New("symbol is empty")
	}
	if r.Timestamp.IsZero() {
		return errors.New("timestamp is zero")
	}
	prices := [...]struct {
		name  string
		value float64
	}{
		{"open", r.Open},
		{"high", r.High},
		{"low", r.Low},
		{"close", r.Close},
	}
	for _, p := range prices {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%s is not finite", p.name)
		}
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %v", p.name, p.value)
		}
	}
	if r.Volume < 0 {
		return fmt.Errorf("volume must be non-negative, got %d", r.Volume)
	}
	return nil
}

// Batch is an ordered set of records produced by one pipeline run.
type Batch []Record

// Dedupe returns the batch with later duplicates of a key removed.
// The first occurrence wins, matching the store's conflict rule.
func (b Batch) Dedupe() Batch {
	seen := make(map[Key]struct{}, len(b))
	out := make(Batch, 0, len(b))
	for _, r := range b {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Symbols returns the distinct symbols in first-seen order.
func (b Batch) Symbols() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range b {
		if _, ok := seen[r.Symbol]; ok {
			continue
		}
		seen[r.Symbol] = struct{}{}
		out = append(out, r.Symbol)
	}
	return out
}

// -----------------------------------------------------------------------------
// Raw Types
// -----------------------------------------------------------------------------

// RawBar holds one day of provider fields exactly as received.
type RawBar struct {
	Open   string
	High   string
	Low    string
	Close  string
	Volume string
}

// RawSeries is one symbol's payload keyed by date label ("2024-01-02").
type RawSeries struct {
	Symbol string
	Bars   map[string]RawBar
}

// Len returns the number of bars in the series.
func (s RawSeries) Len() int {
	return len(s.Bars)
}

// Day truncates t to its calendar day, keeping the wall-clock date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package transform

import (
	"cmp"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ohlcv-etl/ohlcv/internal/model"
)

// DefaultDays is the trailing window kept by Normalize.
const DefaultDays = 180

// Options controls normalization.
type Options struct {
	Days int       // Trailing window in days (default: 180)
	Now  time.Time // Reference wall clock (default: time.Now)
}

// Report counts rows at each normalization step.
type Report struct {
	Raw            int // Bars received
	BadDates       int // Bars dropped for an unparseable date label
	InWindow       int // Bars inside the trailing window
	Filled         int // Missing values filled from neighbours
	DroppedMissing int // Rows with a column missing for the whole symbol
	DroppedInvalid int // Rows with a price or volume outside the representable range
	Output         int // Records produced
}

// LogValue implements slog.LogValuer.
func (r Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("raw", r.Raw),
		slog.Int("bad_dates", r.BadDates),
		slog.Int("in_window", r.InWindow),
		slog.Int("filled", r.Filled),
		slog.Int("dropped_missing", r.DroppedMissing),
		slog.Int("dropped_invalid", r.DroppedInvalid),
		slog.Int("output", r.Output),
	)
}

// Column order inside row.values.
const (
	colOpen = iota
	colHigh
	colLow
	colClose
	colVolume
	numCols
)

type row struct {
	symbol string
	ts     time.Time
	values [numCols]decimal.NullDecimal
}

// Normalize converts raw series into a sorted batch of valid records.
func Normalize(series []model.RawSeries, opts Options) (model.Batch, Report) {
	if opts.Days <= 0 {
		opts.Days = DefaultDays
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	var rep Report
	cutoff := Cutoff(opts.Now, opts.Days)

	rows := make([]row, 0)
	for _, s := range series {
		symbol := strings.ToUpper(strings.TrimSpace(s.Symbol))
		for label, bar := range s.Bars {
			rep.Raw++
			day, err := time.Parse(model.DateLayout, strings.TrimSpace(label))
			if err != nil {
				rep.BadDates++
				continue
			}
			if day.Before(cutoff) {
				continue
			}
			rows = append(rows, row{
				symbol: symbol,
				ts:     day,
				values: [numCols]decimal.NullDecimal{
					colOpen:   coerce(bar.Open),
					colHigh:   coerce(bar.High),
					colLow:    coerce(bar.Low),
					colClose:  coerce(bar.Close),
					colVolume: coerce(bar.Volume),
				},
			})
		}
	}
	rep.InWindow = len(rows)

	slices.SortStableFunc(rows, func(a, b row) int {
		if c := cmp.Compare(a.symbol, b.symbol); c != 0 {
			return c
		}
		return a.ts.Compare(b.ts)
	})

	rep.Filled = fill(rows)

	batch := make(model.Batch, 0, len(rows))
	for _, r := range rows {
		if !complete(r) {
			rep.DroppedMissing++
			continue
		}
		if !plausible(r) {
			rep.DroppedInvalid++
			continue
		}
		batch = append(batch, toRecord(r))
	}
	rep.Output = len(batch)

	return batch, rep
}

// Cutoff returns the earliest day kept for a window of days ending at now.
// now's wall clock is used as-is; date labels carry no zone.
func Cutoff(now time.Time, days int) time.Time {
	naive := time.Date(now.Year(), now.Month(), now.Day(),
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)
	return naive.AddDate(0, 0, -days)
}

// coerce parses a numeric string; anything unparseable becomes missing.
func coerce(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// fill forward-fills then back-fills each column within runs of the same symbol.
// rows must be sorted by symbol. It returns the number of values filled.
func fill(rows []row) int {
	filled := 0
	for start := 0; start < len(rows); {
		end := start
		for end < len(rows) && rows[end].symbol == rows[start].symbol {
			end++
		}
		group := rows[start:end]

		for col := 0; col < numCols; col++ {
			var last decimal.NullDecimal
			for i := range group {
				if group[i].values[col].Valid {
					last = group[i].values[col]
				} else if last.Valid {
					group[i].values[col] = last
					filled++
				}
			}
			var next decimal.NullDecimal
			for i := len(group) - 1; i >= 0; i-- {
				if group[i].values[col].Valid {
					next = group[i].values[col]
				} else if next.Valid {
					group[i].values[col] = next
					filled++
				}
			}
		}
		start = end
	}
	return filled
}

func complete(r row) bool {
	for _, v := range r.values {
		if !v.Valid {
			return false
		}
	}
	return true
}

var maxVolume = decimal.NewFromInt(math.MaxInt64)

func plausible(r row) bool {
	if r.symbol == "" {
		return false
	}
	for col := colOpen; col <= colClose; col++ {
		d := r.values[col].Decimal
		if !d.IsPositive() {
			return false
		}
		if f := d.InexactFloat64(); math.IsInf(f, 0) || f == 0 {
			return false
		}
	}
	vol := r.values[colVolume].Decimal.Truncate(0)
	return !vol.IsNegative() && !vol.GreaterThan(maxVolume)
}

func toRecord(r row) model.Record {
	return model.Record{
		Timestamp: r.ts,
		Symbol:    r.symbol,
		Open:      r.values[colOpen].Decimal.InexactFloat64(),
		High:      r.values[colHigh].Decimal.InexactFloat64(),
		Low:       r.values[colLow].Decimal.InexactFloat64(),
		Close:     r.values[colClose].Decimal.InexactFloat64(),
		Volume:    r.values[colVolume].Decimal.IntPart(),
	}
}

package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ohlcv-etl/ohlcv/internal/api"
	"github.com/ohlcv-etl/ohlcv/internal/metrics"
	"github.com/ohlcv-etl/ohlcv/internal/model"
)

// ErrNoData is returned when no symbol was fetched successfully.
var ErrNoData = errors.New("no data fetched")

// Source provides raw daily series.
type Source interface {
	GetDailySeries(ctx context.Context, symbol string, size api.OutputSize) (model.RawSeries, error)
}

// Config holds fetcher configuration.
type Config struct {
	Delay time.Duration // Wait after each successful call (default: 30s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Delay: 30 * time.Second}
}

// Outcome classifies one symbol fetch.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeSkip
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkip:
		return "skip"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// SymbolResult is the outcome of fetching one symbol.
type SymbolResult struct {
	Symbol  string
	Outcome Outcome
	Bars    int
	Err     error
}

// Result collects everything a run fetched.
type Result struct {
	Series      []model.RawSeries
	Outcomes    []SymbolResult
	RateLimited bool
}

// Succeeded returns the number of symbols fetched successfully.
func (r Result) Succeeded() int {
	return len(r.Series)
}

// Fetcher runs the sequential extract loop.
type Fetcher struct {
	cfg     Config
	source  Source
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// New creates a new Fetcher.
func New(cfg Config, source Source, logger *slog.Logger, rec *metrics.Recorder) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		cfg:     cfg,
		source:  source,
		logger:  logger,
		metrics: rec,
	}
}

// Run fetches symbols in order. It returns ErrNoData only when nothing succeeded;
// on cancellation the partial result is returned with the context error.
func (f *Fetcher) Run(ctx context.Context, symbols []string, size api.OutputSize) (Result, error) {
	start := time.Now()
	var res Result

	for i, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		sr := f.fetchSymbol(ctx, symbol, size, &res)
		res.Outcomes = append(res.Outcomes, sr)
		f.metrics.FetchOutcome(sr.Outcome.String())

		if sr.Outcome == OutcomeFatal {
			res.RateLimited = true
			f.logger.Warn("rate limit hit, stopping fetch",
				"symbol", symbol,
				"remaining", len(symbols)-i-1,
			)
			f.logger.Error("extract halted by provider", "symbol", symbol, "err", sr.Err)
			break
		}

		if sr.Outcome == OutcomeSuccess && i < len(symbols)-1 && f.cfg.Delay > 0 {
			f.logger.Debug("waiting before next request", "delay", f.cfg.Delay)
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(f.cfg.Delay):
			}
		}
	}

	f.logger.Info("fetch complete",
		"symbols", len(symbols),
		"fetched", res.Succeeded(),
		"rate_limited", res.RateLimited,
		"duration", time.Since(start),
	)

	if res.Succeeded() == 0 {
		return res, ErrNoData
	}
	return res, nil
}

// fetchSymbol fetches and classifies a single symbol.
func (f *Fetcher) fetchSymbol(ctx context.Context, symbol string, size api.OutputSize, res *Result) SymbolResult {
	series, err := f.source.GetDailySeries(ctx, symbol, size)
	if err != nil {
		outcome := Classify(err)
		if outcome == OutcomeSkip {
			f.logger.Error("failed to fetch symbol", "symbol", symbol, "err", err)
		}
		return SymbolResult{Symbol: symbol, Outcome: outcome, Err: err}
	}

	res.Series = append(res.Series, series)
	f.logger.Info("fetched symbol", "symbol", symbol, "bars", series.Len())
	return SymbolResult{Symbol: symbol, Outcome: OutcomeSuccess, Bars: series.Len()}
}

// Classify maps a fetch error to an outcome.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var rl *api.RateLimitError
	if errors.As(err, &rl) {
		return OutcomeFatal
	}
	return OutcomeSkip
}

package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/ohlcv-etl/ohlcv/internal/metrics"
	"github.com/ohlcv-etl/ohlcv/internal/model"
	"github.com/ohlcv-etl/ohlcv/internal/store"
)

// Mode selects the merge strategy.
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeBulk Mode = "bulk"
	ModeRow  Mode = "row"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeAuto, ModeBulk, ModeRow:
		return m, nil
	default:
		return "", fmt.Errorf("invalid load mode %q: must be auto, bulk or row", s)
	}
}

// Config holds engine configuration.
type Config struct {
	Mode         Mode // Default strategy (default: auto)
	RowThreshold int  // Auto mode uses row inserts up to this many records (default: 25)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Mode:         ModeAuto,
		RowThreshold: 25,
	}
}

// Result summarizes one merge call.
type Result struct {
	Mode      Mode
	Attempted int
	Inserted  int
	Skipped   int // Already stored, including duplicates within the batch
	Rejected  int
	Duration  time.Duration
	RowErrors []*RowError
}

// RowsPerSecond returns attempted records per second of merge time.
func (r Result) RowsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Attempted) / r.Duration.Seconds()
}

// Engine merges batches into the store.
type Engine struct {
	opener  store.Opener
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// New creates a new Engine.
func New(opener store.Opener, cfg Config, logger *slog.Logger, rec *metrics.Recorder) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeAuto
	}
	return &Engine{
		opener:  opener,
		cfg:     cfg,
		logger:  logger,
		metrics: rec,
	}
}

// EnsureSchema creates the table if needed and verifies its columns. Safe to repeat.
func (e *Engine) EnsureSchema(ctx context.Context) error {
	return e.withSession(ctx, func(store.Session) error { return nil })
}

// Merge merges batch using the configured mode.
func (e *Engine) Merge(ctx context.Context, batch model.Batch) (Result, error) {
	return e.MergeWithMode(ctx, batch, e.cfg.Mode)
}

// MergeWithMode merges batch using mode, resolving auto against the row threshold.
// Row mode reports rejected records in Result.RowErrors with a nil error.
func (e *Engine) MergeWithMode(ctx context.Context, batch model.Batch, mode Mode) (Result, error) {
	start := time.Now()
	res := Result{
		Mode:      e.resolve(mode, len(batch)),
		Attempted: len(batch),
	}

	err := e.withSession(ctx, func(s store.Session) error {
		if len(batch) == 0 {
			e.logger.Info("no records to merge")
			return nil
		}

		var err error
		if res.Mode == ModeBulk {
			err = e.mergeBulk(ctx, s, batch, &res)
		} else {
			err = e.mergeRows(ctx, s, batch, &res)
		}
		if err != nil {
			return err
		}

		e.logCoverage(ctx, s, batch.Symbols())
		return nil
	})
	res.Duration = time.Since(start)

	if err != nil {
		e.metrics.MergeFailed(failureReason(err))
		e.logger.Error("merge failed",
			"mode", res.Mode,
			"records", res.Attempted,
			"error", err,
		)
		return res, err
	}

	res.Skipped = res.Attempted - res.Inserted - res.Rejected
	e.metrics.Merge(string(res.Mode), int64(res.Attempted), int64(res.Inserted), int64(res.Rejected), res.Duration)

	e.logger.Info("merge complete",
		"mode", res.Mode,
		"records", res.Attempted,
		"inserted", res.Inserted,
		"skipped", res.Skipped,
		"rejected", res.Rejected,
		"duration", res.Duration,
		"records_per_sec", fmt.Sprintf("%.2f", res.RowsPerSecond()),
	)
	return res, nil
}

func (e *Engine) resolve(mode Mode, n int) Mode {
	switch mode {
	case ModeBulk, ModeRow:
		return mode
	default:
		if n <= e.cfg.RowThreshold {
			return ModeRow
		}
		return ModeBulk
	}
}

// withSession opens a session, ensures the schema and runs fn, closing the session
// on every path.
func (e *Engine) withSession(ctx context.Context, fn func(store.Session) error) error {
	s, err := e.opener.Open(ctx)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			e.logger.Warn("failed to close store session", "error", err)
		}
	}()

	if err := s.EnsureSchema(ctx); err != nil {
		if errors.Is(err, ErrSchemaMismatch) {
			return fmt.Errorf("ensure schema: %w", err)
		}
		return fmt.Errorf("ensure schema: %w: %w", ErrStoreUnavailable, err)
	}

	return fn(s)
}

// mergeBulk validates the whole batch, then hands it to the store in one statement.
func (e *Engine) mergeBulk(ctx context.Context, s store.Session, batch model.Batch, res *Result) error {
	var firstErr error
	invalid := 0
	for i, r := range batch {
		if err := r.Validate(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("record %d (%s): %w", i, r.Key(), err)
			}
			invalid++
		}
	}
	if firstErr != nil {
		return fmt.Errorf("%w: %d invalid records, first: %w", ErrBatchRejected, invalid, firstErr)
	}

	inserted, err := s.BulkMerge(ctx, batch)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBatchRejected, err)
	}
	res.Inserted = int(inserted)
	return nil
}

// mergeRows inserts records one at a time, rejecting bad ones and continuing.
func (e *Engine) mergeRows(ctx context.Context, s store.Session, batch model.Batch, res *Result) error {
	for i, r := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := r.Validate()
		if err == nil {
			var ok bool
			ok, err = s.InsertRow(ctx, r)
			if err == nil {
				if ok {
					res.Inserted++
				}
				continue
			}
		}

		rowErr := &RowError{Index: i, Key: r.Key(), Err: err}
		res.Rejected++
		res.RowErrors = append(res.RowErrors, rowErr)
		e.logger.Warn("record rejected", "index", i, "key", rowErr.Key.String(), "error", err)
	}
	return nil
}

// logCoverage reports the stored range of every symbol in the batch.
func (e *Engine) logCoverage(ctx context.Context, s store.Session, symbols []string) {
	cov, err := s.Coverage(ctx)
	if err != nil {
		e.logger.Warn("failed to read store coverage", "error", err)
		return
	}
	for _, c := range cov {
		if !slices.Contains(symbols, c.Symbol) {
			continue
		}
		e.logger.Info("store coverage",
			"symbol", c.Symbol,
			"rows", c.Rows,
			"first", c.First.Format(model.DateLayout),
			"last", c.Last.Format(model.DateLayout),
		)
	}
}

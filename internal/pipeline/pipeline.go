package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ohlcv-etl/ohlcv/internal/api"
	"github.com/ohlcv-etl/ohlcv/internal/config"
	"github.com/ohlcv-etl/ohlcv/internal/database"
	"github.com/ohlcv-etl/ohlcv/internal/fetcher"
	"github.com/ohlcv-etl/ohlcv/internal/loader"
	"github.com/ohlcv-etl/ohlcv/internal/metrics"
	"github.com/ohlcv-etl/ohlcv/internal/model"
	"github.com/ohlcv-etl/ohlcv/internal/staging"
	"github.com/ohlcv-etl/ohlcv/internal/transform"
)

// ErrEmptyStage is returned when a stage produced no records.
var ErrEmptyStage = errors.New("stage produced no records")

// Pipeline runs stages against one configuration.
type Pipeline struct {
	cfg     *config.Config
	fetcher *fetcher.Fetcher
	engine  *loader.Engine
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// New creates a Pipeline from prepared components. Every log line carries the run id.
func New(cfg *config.Config, f *fetcher.Fetcher, e *loader.Engine, logger *slog.Logger, rec *metrics.Recorder) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:     cfg,
		fetcher: f,
		engine:  e,
		logger:  logger,
		metrics: rec,
		now:     time.Now,
	}
}

// FromConfig builds the API client, fetcher, store opener and merge engine from cfg.
func FromConfig(cfg *config.Config, logger *slog.Logger, rec *metrics.Recorder) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", uuid.NewString())

	client := api.NewClient(cfg.API.BaseURL, cfg.API.APIKey,
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
		api.WithLogger(logger),
	)
	f := fetcher.New(fetcher.Config{Delay: cfg.API.Delay}, client, logger, rec)

	opener, err := database.NewOpener(cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("create store opener: %w", err)
	}

	mode, err := loader.ParseMode(cfg.Loader.Mode)
	if err != nil {
		return nil, err
	}
	engine := loader.New(opener, loader.Config{
		Mode:         mode,
		RowThreshold: cfg.Loader.RowThreshold,
	}, logger, rec)

	return New(cfg, f, engine, logger, rec), nil
}

// Extract fetches every configured symbol and writes the raw file.
// When nothing was fetched the raw file is left untouched.
func (p *Pipeline) Extract(ctx context.Context, size api.OutputSize) (fetcher.Result, error) {
	p.logger.Info("starting extract", "symbols", len(p.cfg.Symbols), "output_size", size)

	res, err := p.fetch(ctx, size)
	if err != nil {
		return res, err
	}

	n, err := staging.WriteRaw(p.cfg.Paths.Raw, res.Series)
	if err != nil {
		return res, fmt.Errorf("write raw data: %w", err)
	}
	p.metrics.StageRecords("extract", n)
	p.logger.Info("raw data saved", "path", p.cfg.Paths.Raw, "symbols", res.Succeeded(), "rows", n)
	return res, nil
}

// Transform reads the raw file, normalizes it and writes the processed file.
func (p *Pipeline) Transform(ctx context.Context, days int) (model.Batch, error) {
	series, err := staging.ReadRaw(p.cfg.Paths.Raw)
	if err != nil {
		return nil, fmt.Errorf("read raw data: %w", err)
	}
	p.logger.Info("loaded raw data", "path", p.cfg.Paths.Raw, "symbols", len(series))

	return p.transform(ctx, series, days)
}

// Load reads the processed file and merges it into the store.
func (p *Pipeline) Load(ctx context.Context, mode loader.Mode) (loader.Result, error) {
	batch, err := staging.ReadBatch(p.cfg.Paths.Processed)
	if err != nil {
		return loader.Result{}, fmt.Errorf("read processed data: %w", err)
	}
	if len(batch) == 0 {
		p.logger.Info("no data to load", "path", p.cfg.Paths.Processed)
		return loader.Result{Mode: mode}, nil
	}
	p.logger.Info("loaded processed records", "path", p.cfg.Paths.Processed, "records", len(batch))

	return p.engine.MergeWithMode(ctx, batch, mode)
}

// Run executes extract, transform and load in one process. Records fetched before a
// rate limit still flow through to the store.
func (p *Pipeline) Run(ctx context.Context, size api.OutputSize, days int, mode loader.Mode) (loader.Result, error) {
	start := p.now()

	fetched, err := p.Extract(ctx, size)
	if err != nil {
		return loader.Result{}, fmt.Errorf("extract: %w", err)
	}

	batch, err := p.transform(ctx, fetched.Series, days)
	if err != nil {
		return loader.Result{}, fmt.Errorf("transform: %w", err)
	}

	res, err := p.engine.MergeWithMode(ctx, batch, mode)
	if err != nil {
		return res, fmt.Errorf("load: %w", err)
	}

	p.logger.Info("pipeline complete",
		"fetched_symbols", fetched.Succeeded(),
		"rate_limited", fetched.RateLimited,
		"records", len(batch),
		"inserted", res.Inserted,
		"duration", time.Since(start),
	)
	return res, nil
}

func (p *Pipeline) fetch(ctx context.Context, size api.OutputSize) (fetcher.Result, error) {
	res, err := p.fetcher.Run(ctx, p.cfg.Symbols, size)
	if errors.Is(err, fetcher.ErrNoData) {
		p.logger.Error("no data fetched, raw file not written", "path", p.cfg.Paths.Raw)
	}
	return res, err
}

// transform normalizes series and writes the processed file.
func (p *Pipeline) transform(ctx context.Context, series []model.RawSeries, days int) (model.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch, rep := transform.Normalize(series, transform.Options{Days: days, Now: p.now()})
	p.logger.Info("normalized records", "days", days, "report", rep)
	if rep.DroppedInvalid > 0 {
		p.logger.Warn("dropped records with invalid values", "count", rep.DroppedInvalid)
	}

	if len(batch) == 0 {
		p.logger.Warn("no records after transform, processed file not written", "path", p.cfg.Paths.Processed)
		return nil, ErrEmptyStage
	}

	if err := staging.WriteBatch(p.cfg.Paths.Processed, batch); err != nil {
		return nil, fmt.Errorf("write processed data: %w", err)
	}
	p.metrics.StageRecords("transform", len(batch))
	p.logger.Info("processed data saved", "path", p.cfg.Paths.Processed, "records", len(batch))
	return batch, nil
}

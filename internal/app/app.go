package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ohlcv-etl/ohlcv/internal/config"
	"github.com/ohlcv-etl/ohlcv/internal/logging"
	"github.com/ohlcv-etl/ohlcv/internal/metrics"
	"github.com/ohlcv-etl/ohlcv/internal/pipeline"
	"github.com/ohlcv-etl/ohlcv/internal/version"
)

// Env is the initialized runtime of one command.
type Env struct {
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
	Pipeline *pipeline.Pipeline

	logCloser io.Closer
	stop      context.CancelFunc
}

// Option configures Start.
type Option func(*options)

type options struct {
	fetch bool
}

// WithFetch marks a command that calls the quote API, so its credentials are required.
func WithFetch() Option {
	return func(o *options) {
		o.fetch = true
	}
}

// Start loads configuration, builds the logger and pipeline, and returns a context
// cancelled on SIGINT or SIGTERM. Close must be called before exit.
func Start(name, configPath string, opts ...Option) (context.Context, *Env, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if o.fetch {
		if err := cfg.ValidateFetch(); err != nil {
			return nil, nil, fmt.Errorf("load config: validate config: %w", err)
		}
	}

	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	logger = logger.With("cmd", name)
	slog.SetDefault(logger)

	logger.Info("starting "+name, append(version.LogAttrs(), "config", configPath)...)

	rec := metrics.New()
	p, err := pipeline.FromConfig(cfg, logger, rec)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, &Env{
		Config:    cfg,
		Logger:    logger,
		Metrics:   rec,
		Pipeline:  p,
		logCloser: closer,
		stop: func() {
			signal.Stop(sigCh)
			cancel()
		},
	}, nil
}

// Close writes the metrics textfile, if configured, and releases the log file.
func (e *Env) Close() {
	if err := e.Metrics.WriteTextfile(e.Config.Metrics.Textfile); err != nil {
		e.Logger.Warn("failed to write metrics textfile", "path", e.Config.Metrics.Textfile, "error", err)
	}
	e.stop()
	e.logCloser.Close()
}

// Fatal logs err, closes the environment and exits with status 1.
func (e *Env) Fatal(msg string, err error) {
	e.Logger.Error(msg, "error", err)
	e.Close()
	os.Exit(1)
}

// Fatal logs err and exits with status 1. It is used before an Env exists.
func Fatal(logger *slog.Logger, msg string, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error(msg, "error", err)
	os.Exit(1)
}

package database

import (
	"fmt"
	"log/slog"

	"github.com/ohlcv-etl/ohlcv/internal/config"
	"github.com/ohlcv-etl/ohlcv/internal/store"
)

// NewOpener selects the store backend named by cfg.Driver.
func NewOpener(cfg config.StoreConfig, logger *slog.Logger) (store.Opener, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case config.DriverDuckDB, "":
		return store.NewDuckDB(cfg.Path, cfg.Table, logger), nil
	case config.DriverPostgres:
		return store.NewPostgres(BuildConnString(cfg.Postgres), cfg.Table, logger), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

package app

import (
	"fmt"

	"github.com/ohlcv-etl/ohlcv/internal/api"
	"github.com/ohlcv-etl/ohlcv/internal/config"
	"github.com/ohlcv-etl/ohlcv/internal/loader"
)

// DefaultConfigPath is the -config flag default.
const DefaultConfigPath = "configs/etl.yaml"

// Stage flags override the matching configuration value when set.
type StageFlags struct {
	OutputSize string
	Days       int
	Mode       string
}

// Resolve validates the flags against cfg.
func (f StageFlags) Resolve(cfg *config.Config) (api.OutputSize, int, loader.Mode, error) {
	size, err := api.ParseOutputSize(f.OutputSize)
	if err != nil {
		return "", 0, "", err
	}

	days := cfg.Transform.Days
	if f.Days != 0 {
		if f.Days < 0 {
			return "", 0, "", fmt.Errorf("invalid days %d: must be positive", f.Days)
		}
		days = f.Days
	}

	modeName := cfg.Loader.Mode
	if f.Mode != "" {
		modeName = f.Mode
	}
	mode, err := loader.ParseMode(modeName)
	if err != nil {
		return "", 0, "", err
	}

	return size, days, mode, nil
}

// Command pipeline runs extract, transform and load in one process.
package main

import (
	"flag"

	"github.com/ohlcv-etl/ohlcv/internal/app"
)

func main() {
	configPath := flag.String("config", app.DefaultConfigPath, "path to config file")
	outputSize := flag.String("outputsize", "compact", "history depth: compact or full")
	days := flag.Int("days", 0, "trailing window in days (0 uses transform.days)")
	mode := flag.String("mode", "", "merge strategy: auto, bulk or row (empty uses loader.mode)")
	flag.Parse()

	ctx, env, err := app.Start("pipeline", *configPath, app.WithFetch())
	if err != nil {
		app.Fatal(nil, "failed to start", err)
	}

	size, window, m, err := app.StageFlags{
		OutputSize: *outputSize,
		Days:       *days,
		Mode:       *mode,
	}.Resolve(env.Config)
	if err != nil {
		env.Fatal("invalid flags", err)
	}

	if _, err := env.Pipeline.Run(ctx, size, window, m); err != nil {
		env.Fatal("pipeline failed", err)
	}
	env.Close()
}

// Command extract fetches daily bars for the configured symbols into the raw staging file.
package main

import (
	"flag"

	"github.com/ohlcv-etl/ohlcv/internal/app"
)

func main() {
	configPath := flag.String("config", app.DefaultConfigPath, "path to config file")
	outputSize := flag.String("outputsize", "compact", "history depth: compact or full")
	flag.Parse()

	ctx, env, err := app.Start("extract", *configPath, app.WithFetch())
	if err != nil {
		app.Fatal(nil, "failed to start", err)
	}

	size, _, _, err := app.StageFlags{OutputSize: *outputSize}.Resolve(env.Config)
	if err != nil {
		env.Fatal("invalid flags", err)
	}

	res, err := env.Pipeline.Extract(ctx, size)
	if err != nil {
		env.Fatal("extract failed", err)
	}

	env.Logger.Info("extract complete", "symbols", res.Succeeded(), "rate_limited", res.RateLimited)
	env.Close()
}

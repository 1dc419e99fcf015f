// Command load merges the processed staging file into the configured store.
package main

import (
	"flag"

	"github.com/ohlcv-etl/ohlcv/internal/app"
)

func main() {
	configPath := flag.String("config", app.DefaultConfigPath, "path to config file")
	mode := flag.String("mode", "", "merge strategy: auto, bulk or row (empty uses loader.mode)")
	flag.Parse()

	ctx, env, err := app.Start("load", *configPath)
	if err != nil {
		app.Fatal(nil, "failed to start", err)
	}

	_, _, m, err := app.StageFlags{OutputSize: "compact", Mode: *mode}.Resolve(env.Config)
	if err != nil {
		env.Fatal("invalid flags", err)
	}

	res, err := env.Pipeline.Load(ctx, m)
	if err != nil {
		env.Fatal("load failed", err)
	}

	env.Logger.Info("load complete",
		"mode", res.Mode,
		"inserted", res.Inserted,
		"skipped", res.Skipped,
		"rejected", res.Rejected,
	)
	env.Close()
}

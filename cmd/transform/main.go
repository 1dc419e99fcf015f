// Command transform normalizes the raw staging file into the processed staging file.
package main

import (
	"flag"

	"github.com/ohlcv-etl/ohlcv/internal/app"
)

func main() {
	configPath := flag.String("config", app.DefaultConfigPath, "path to config file")
	days := flag.Int("days", 0, "trailing window in days (0 uses transform.days)")
	flag.Parse()

	ctx, env, err := app.Start("transform", *configPath)
	if err != nil {
		app.Fatal(nil, "failed to start", err)
	}

	_, window, _, err := app.StageFlags{OutputSize: "compact", Days: *days}.Resolve(env.Config)
	if err != nil {
		env.Fatal("invalid flags", err)
	}

	batch, err := env.Pipeline.Transform(ctx, window)
	if err != nil {
		env.Fatal("transform failed", err)
	}

	env.Logger.Info("transform complete", "records", len(batch))
	env.Close()
}

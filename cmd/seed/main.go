// Command seed merges historical bars from a CSV file into the configured store.
package main

import (
	"errors"
	"flag"

	"github.com/ohlcv-etl/ohlcv/internal/app"
)

func main() {
	configPath := flag.String("config", app.DefaultConfigPath, "path to config file")
	csvPath := flag.String("csv", "", "CSV file with timestamp,symbol,open,high,low,close,volume columns")
	flag.Parse()

	if *csvPath == "" {
		app.Fatal(nil, "missing flag", errors.New("-csv is required"))
	}

	ctx, env, err := app.Start("seed", *configPath)
	if err != nil {
		app.Fatal(nil, "failed to start", err)
	}

	res, err := env.Pipeline.Seed(ctx, *csvPath)
	if err != nil {
		env.Fatal("seed failed", err)
	}

	env.Logger.Info("seed complete", "inserted", res.Inserted, "skipped", res.Skipped, "rejected", res.Rejected)
	env.Close()
}

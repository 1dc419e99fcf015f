package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL       = "https://www.alphavantage.co/query"
	DefaultAPITimeout    = 30 * time.Second
	DefaultMaxRetries    = 2
	DefaultRetryBackoff  = time.Second
	DefaultDelay         = 30 * time.Second
	DefaultRawPath       = "data/raw/raw_data.parquet"
	DefaultProcessedPath = "data/processed/clean_data.parquet"
	DefaultDriver        = DriverDuckDB
	DefaultDBFile        = "market_data.duckdb"
	DefaultTable         = "ohlcv_data"
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultLoaderMode    = "auto"
	DefaultRowThreshold  = 25
	DefaultDays          = 180
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultLogFile       = "etl.log"
	DefaultLogMaxSizeMB  = 50
	DefaultLogMaxBackups = 5
	DefaultEnvFile       = ".env"
)

// DefaultSymbols is the symbol list used when none is configured.
var DefaultSymbols = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA"}

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}
	if c.API.Delay == 0 {
		c.API.Delay = DefaultDelay
	}

	if len(c.Symbols) == 0 {
		c.Symbols = append([]string(nil), DefaultSymbols...)
	}

	// Paths defaults
	if c.Paths.Raw == "" {
		c.Paths.Raw = DefaultRawPath
	}
	if c.Paths.Processed == "" {
		c.Paths.Processed = DefaultProcessedPath
	}

	// Store defaults
	if c.Store.Driver == "" {
		c.Store.Driver = DefaultDriver
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultDBFile
	}
	if c.Store.Table == "" {
		c.Store.Table = DefaultTable
	}
	if c.Store.Postgres.Port == 0 {
		c.Store.Postgres.Port = DefaultDBPort
	}
	if c.Store.Postgres.SSLMode == "" {
		c.Store.Postgres.SSLMode = DefaultDBSSLMode
	}

	// Loader defaults
	if c.Loader.Mode == "" {
		c.Loader.Mode = DefaultLoaderMode
	}
	if c.Loader.RowThreshold == 0 {
		c.Loader.RowThreshold = DefaultRowThreshold
	}

	if c.Transform.Days == 0 {
		c.Transform.Days = DefaultDays
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.File == "" {
		c.Logging.File = DefaultLogFile
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}
}

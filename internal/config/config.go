package config

import "time"

// Config is the root configuration for every pipeline stage.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Symbols   []string        `yaml:"symbols"`
	Paths     PathsConfig     `yaml:"paths"`
	Store     StoreConfig     `yaml:"store"`
	Loader    LoaderConfig    `yaml:"loader"`
	Transform TransformConfig `yaml:"transform"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// APIConfig holds Alpha Vantage settings.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	Delay        time.Duration `yaml:"delay"` // Wait after each successful call
}

// PathsConfig holds the staging file locations between stages.
type PathsConfig struct {
	Raw       string `yaml:"raw"`
	Processed string `yaml:"processed"`
}

// StoreConfig selects and locates the persistent store.
type StoreConfig struct {
	Driver   string         `yaml:"driver"` // "duckdb" or "postgres"
	Path     string         `yaml:"path"`   // DuckDB database file
	Table    string         `yaml:"table"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// Store drivers.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
)

// PostgresConfig holds a single Postgres/TimescaleDB connection.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

// LoaderConfig holds merge engine settings.
type LoaderConfig struct {
	Mode         string `yaml:"mode"` // "auto", "bulk" or "row"
	RowThreshold int    `yaml:"row_threshold"`
}

// TransformConfig holds normalizer settings.
type TransformConfig struct {
	Days int `yaml:"days"` // Trailing window
}

// LoggingConfig holds log sink settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // "text" or "json"
	File       string `yaml:"file"`   // Shared log file, empty for console only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// MetricsConfig holds Prometheus textfile settings.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

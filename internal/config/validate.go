package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that all required fields are set and values are valid.
// Settings used only when fetching are checked by ValidateFetch.
func (c *Config) Validate() error {
	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must be >= 0")
	}
	if c.API.Delay < 0 {
		return errors.New("api.delay must be >= 0")
	}

	if len(c.Symbols) == 0 {
		return errors.New("symbols must not be empty")
	}
	for i, s := range c.Symbols {
		if s == "" {
			return fmt.Errorf("symbols[%d] is empty", i)
		}
		if s != strings.ToUpper(s) {
			return fmt.Errorf("symbols[%d] must be uppercase, got %q", i, s)
		}
	}

	if err := c.Store.validate(); err != nil {
		return err
	}

	switch c.Loader.Mode {
	case "auto", "bulk", "row":
	default:
		return fmt.Errorf("loader.mode must be one of auto, bulk, row, got %q", c.Loader.Mode)
	}
	if c.Loader.RowThreshold < 0 {
		return errors.New("loader.row_threshold must be >= 0")
	}

	if c.Transform.Days < 1 {
		return fmt.Errorf("transform.days must be >= 1, got %d", c.Transform.Days)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func (s *StoreConfig) validate() error {
	if !identifierPattern.MatchString(s.Table) {
		return fmt.Errorf("store.table %q is not a valid identifier", s.Table)
	}
	switch s.Driver {
	case DriverDuckDB:
		if s.Path == "" {
			return errors.New("store.path is required")
		}
	case DriverPostgres:
		return s.Postgres.validate("store.postgres")
	default:
		return fmt.Errorf("store.driver must be duckdb or postgres, got %q", s.Driver)
	}
	return nil
}

func (db *PostgresConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Port < 1 || db.Port > 65535 {
		return fmt.Errorf("%s.port must be between 1 and 65535, got %d", prefix, db.Port)
	}
	return nil
}

// ValidateFetch checks the settings the extract stage needs on top of Validate.
func (c *Config) ValidateFetch() error {
	if c.API.APIKey == "" {
		return errors.New("api.api_key is required")
	}
	return nil
}

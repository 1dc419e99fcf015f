// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A .env file in the working directory is loaded first, so the Alpha Vantage key can
// live there as AV_API_KEY and be referenced as api_key: ${AV_API_KEY}.
package config

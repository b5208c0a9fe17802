// Package config handles configuration for the server component:
// defaults, an optional JSON file, environment variables and finally
// command-line flags, each layer overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Supported values for Config.DatabaseDriver.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// SupportedAlgorithms lists the HMAC JWT algorithms the server can sign with.
var SupportedAlgorithms = []string{"HS256", "HS384", "HS512"}

// Config holds runtime settings for the conduit server. It is built once at
// startup and treated as read-only afterwards.
//
// Fields:
//   - EndpointAddrHTTP: bind address of the HTTP API.
//   - DatabaseDriver / DatabaseDSN: "pgx" with a PostgreSQL DSN, or "sqlite"
//     with a file path.
//   - SecretKey / Algorithm: JWT signing key and HMAC algorithm.
//   - AccessTokenValidityDuration: lifetime of issued tokens.
//   - LogLevel: debug, info, warn or error.
//   - S3*: object storage used for avatar uploads. Leaving S3Bucket empty
//     disables avatar uploads.
type Config struct {
	EndpointAddrHTTP            string
	DatabaseDriver              string
	DatabaseDSN                 string
	SecretKey                   string
	Algorithm                   string
	AccessTokenValidityDuration time.Duration
	LogLevel                    string
	S3AccessKey                 string
	S3SecretKey                 string
	S3Bucket                    string
	S3Region                    string
	S3BaseEndpoint              string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.DatabaseDriver = DriverSQLite
	c.DatabaseDSN = "conduit.db"
	c.SecretKey = "change-me"
	c.Algorithm = "HS256"
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.LogLevel = "info"
	c.S3Region = "us-east-1"
}

// StorageEnabled reports whether avatar uploads are configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.EndpointAddrHTTP == "" {
		errs = append(errs, errors.New("http address is empty"))
	}
	if c.DatabaseDriver != DriverPostgres && c.DatabaseDriver != DriverSQLite {
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database dsn is empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	}
	if !slices.Contains(SupportedAlgorithms, c.Algorithm) {
		errs = append(errs, fmt.Errorf("unsupported signing algorithm %q", c.Algorithm))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("access token validity must be positive"))
	}

	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and the command-line flags
// found in args (usually os.Args[1:]). The result is validated.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

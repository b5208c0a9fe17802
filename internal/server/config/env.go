package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig mirrors Config for environment parsing. Unset variables keep
// the value already present in the struct.
type envConfig struct {
	EndpointAddrHTTP         string `env:"CONDUIT_HTTP_ADDR"`
	DatabaseDriver           string `env:"CONDUIT_DB_DRIVER"`
	DatabaseDSN              string `env:"DATABASE_URL"`
	SecretKey                string `env:"SECRET_KEY"`
	Algorithm                string `env:"ALGORITHM"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	LogLevel                 string `env:"CONDUIT_LOG_LEVEL"`
	S3AccessKey              string `env:"CONDUIT_S3_ACCESS_KEY"`
	S3SecretKey              string `env:"CONDUIT_S3_SECRET_KEY"`
	S3Bucket                 string `env:"CONDUIT_S3_BUCKET"`
	S3Region                 string `env:"CONDUIT_S3_REGION"`
	S3BaseEndpoint           string `env:"CONDUIT_S3_ENDPOINT"`
}

func parseEnv(config *Config) error {
	minutes := int(config.AccessTokenValidityDuration / time.Minute)
	e := envConfig{
		EndpointAddrHTTP:         config.EndpointAddrHTTP,
		DatabaseDriver:           config.DatabaseDriver,
		DatabaseDSN:              config.DatabaseDSN,
		SecretKey:                config.SecretKey,
		Algorithm:                config.Algorithm,
		AccessTokenExpireMinutes: minutes,
		LogLevel:                 config.LogLevel,
		S3AccessKey:              config.S3AccessKey,
		S3SecretKey:              config.S3SecretKey,
		S3Bucket:                 config.S3Bucket,
		S3Region:                 config.S3Region,
		S3BaseEndpoint:           config.S3BaseEndpoint,
	}

	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	config.EndpointAddrHTTP = e.EndpointAddrHTTP
	config.DatabaseDriver = e.DatabaseDriver
	config.DatabaseDSN = e.DatabaseDSN
	config.SecretKey = e.SecretKey
	config.Algorithm = e.Algorithm
	if e.AccessTokenExpireMinutes != minutes {
		config.AccessTokenValidityDuration = time.Duration(e.AccessTokenExpireMinutes) * time.Minute
	}
	config.LogLevel = e.LogLevel
	config.S3AccessKey = e.S3AccessKey
	config.S3SecretKey = e.S3SecretKey
	config.S3Bucket = e.S3Bucket
	config.S3Region = e.S3Region
	config.S3BaseEndpoint = e.S3BaseEndpoint

	return nil
}

package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/conduit/internal/flagx"
)

var knownFlags = []string{"-a", "-driver", "-d", "-s", "-alg", "-t", "-l", "-u", "-p", "-b", "-g", "-e"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string       HTTP bind address (e.g. ":8000")
//	-driver string  database driver, "pgx" or "sqlite"
//	-d string       database DSN or SQLite file path
//	-s string       JWT secret key
//	-alg string     JWT algorithm (HS256, HS384, HS512)
//	-t int          access token validity, minutes
//	-l string       log level
//	-u string       S3 access key
//	-p string       S3 secret key
//	-b string       S3 bucket, empty disables avatar uploads
//	-g string       S3 region
//	-e string       S3 base endpoint (e.g. "http://127.0.0.1:9000/")
//
// Only these flags are looked at; args is filtered with flagx.FilterArgs
// first so the -c config flag does not collide.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("conduit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.Algorithm, "alg", config.Algorithm, "JWT signing algorithm")
	accessTokenMinutes := fs.Int("t", -1, "access token validity (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	if *accessTokenMinutes >= 0 {
		config.AccessTokenValidityDuration = time.Duration(*accessTokenMinutes) * time.Minute
	}

	return nil
}

package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/flagx"
)

// parseFlags overlays command-line flags.
//
//	-a string     gRPC bind address (e.g. ":50051")
//	-h string     HTTP bind address for public share links
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t int        access token validity, minutes
//	-k string     base64 key-encryption key
//	-u/-p string  S3 user / password
//	-b string     S3 bucket
//	-g string     S3 region
//	-e string     S3 base endpoint
//	-i int        PBKDF2 iterations
//	-r int        share attempts per token and source per window
//	-w duration   rate-limit window
//	-l string     log level
//	-require-symbol  require a special character in passwords
//
// Flags are pre-filtered through flagx.FilterArgs so options meant for other
// components do not abort parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-h", "-d", "-s", "-t", "-k", "-u", "-p", "-b", "-g", "-e", "-i", "-r", "-w", "-l"},
		"-require-symbol")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "h", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.StringVar(&config.KEK, "k", config.KEK, "base64 key-encryption key")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.IntVar(&config.KDFIterations, "i", config.KDFIterations, "PBKDF2 iterations")
	fs.IntVar(&config.RateLimitAttempts, "r", config.RateLimitAttempts, "share attempts per token and source per window")
	fs.DurationVar(&config.RateLimitWindow, "w", config.RateLimitWindow, "rate limit window")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.PasswordRequireSymbol, "require-symbol", config.PasswordRequireSymbol, "require a special character in passwords")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
}

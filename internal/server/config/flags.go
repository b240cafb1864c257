package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophgram/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     REST bind address (e.g., ":8080")
//	-e string     database driver: pgx, mysql or sqlite
//	-d string     database DSN
//	-k string     token key, 64 hex characters
//	-s string     HMAC secret for signed tokens
//	-f string     token format: encrypted or signed
//	-t duration   token max age
//	-i int        KDF iterations
//	-l int        KDF key length, bytes
//	-w int        concurrent hash workers
//	-m duration   identity cache TTL, 0 disables
//	-n int        access key attempt ceiling
//	-o duration   per-request timeout
//
// os.Args is filtered with flagx.FilterArgs first so that -c/-config and
// unknown flags do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-e", "-d", "-k", "-s", "-f", "-t", "-i", "-l", "-w", "-m", "-n", "-o",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "e", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TokenKey, "k", config.TokenKey, "token key (hex)")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.TokenFormat, "f", config.TokenFormat, "token format")
	fs.DurationVar(&config.TokenMaxAge, "t", config.TokenMaxAge, "token max age")
	fs.IntVar(&config.KDFIterations, "i", config.KDFIterations, "kdf iterations")
	fs.IntVar(&config.KDFKeyLength, "l", config.KDFKeyLength, "kdf key length")
	fs.IntVar(&config.HashWorkers, "w", config.HashWorkers, "hash workers")
	fs.DurationVar(&config.IdentityCacheTTL, "m", config.IdentityCacheTTL, "identity cache ttl")
	fs.IntVar(&config.AccessKeyMaxAttempts, "n", config.AccessKeyMaxAttempts, "access key max attempts")
	fs.DurationVar(&config.RequestTimeout, "o", config.RequestTimeout, "request timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

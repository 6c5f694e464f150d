package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/securebank/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-r string     database driver ("sqlite" or "pgx")
//	-d string     database DSN
//	-k string     password KDF ("argon2id" or "pbkdf2-sha256")
//	-s string     session token HMAC secret
//	-t duration   challenge validity (e.g. "3m")
//	-n int        challenge code digits
//	-x int        challenge attempts before the login is rejected
//	-w duration   session validity
//	-y string     notifier ("file" or "s3")
//	-o string     outbox file for the file notifier
//	-u string     S3 access key
//	-p string     S3 secret key
//	-b string     S3 bucket name
//	-g string     S3 region
//	-e string     S3 base endpoint
//	-m string     metrics listen address
//	-l string     log level
//
// os.Args is first filtered down to these flags with flagx.FilterArgs so the
// -c/-config flag and CLI arguments do not collide. A parse error panics.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-r", "-d", "-k", "-s", "-t", "-n", "-x", "-w", "-y", "-o",
		"-u", "-p", "-b", "-g", "-e", "-m", "-l",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDriver, "r", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.KDF, "k", config.KDF, "password key derivation function")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.ChallengeTTL, "t", config.ChallengeTTL, "challenge validity")
	fs.IntVar(&config.ChallengeDigits, "n", config.ChallengeDigits, "challenge code digits")
	fs.IntVar(&config.ChallengeMaxAttempts, "x", config.ChallengeMaxAttempts, "challenge attempts")
	fs.DurationVar(&config.SessionTTL, "w", config.SessionTTL, "session validity")
	fs.StringVar(&config.Notifier, "y", config.Notifier, "notifier")
	fs.StringVar(&config.OutboxPath, "o", config.OutboxPath, "outbox file")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics listen address")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

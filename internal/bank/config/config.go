// Package config handles configuration for the bank, including defaults,
// environment and .env overlay, JSON overlay, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrijs2005/securebank/internal/cryptox"
	"github.com/dmitrijs2005/securebank/internal/dbx"
)

const (
	NotifierFile = "file"
	NotifierS3   = "s3"
)

// Config holds runtime settings for the bank.
//
// Fields:
//   - DatabaseDriver / DatabaseDSN: "sqlite" (embedded) or "pgx" (PostgreSQL).
//   - KDF: password derivation, "argon2id" or "pbkdf2-sha256".
//   - SecretKey: HMAC secret for signing session tokens (HS256).
//   - ChallengeTTL / ChallengeDigits / ChallengeMaxAttempts: one-time code policy.
//   - SessionTTL: lifetime of an authenticated session.
//   - SweepInterval: how often expired challenges and sessions are reclaimed.
//   - StoreTimeout / StoreRetries / StoreRetryBase: persistence deadlines and
//     backoff for idempotent reads.
//   - Notifier: out-of-band channel, "file" (OutboxPath) or "s3".
//   - S3AccessKey / S3SecretKey / S3Bucket / S3Region / S3BaseEndpoint / S3Prefix:
//     object storage settings for the s3 notifier.
//   - MetricsAddr: bind address for /metrics; empty disables the endpoint.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	DatabaseDriver       string
	DatabaseDSN          string
	KDF                  string
	SecretKey            string
	ChallengeTTL         time.Duration
	ChallengeDigits      int
	ChallengeMaxAttempts int
	SessionTTL           time.Duration
	SweepInterval        time.Duration
	StoreTimeout         time.Duration
	StoreRetries         int
	StoreRetryBase       time.Duration
	Notifier             string
	OutboxPath           string
	S3AccessKey          string
	S3SecretKey          string
	S3Bucket             string
	S3Region             string
	S3BaseEndpoint       string
	S3Prefix             string
	MetricsAddr          string
	LogLevel             string
}

// Development credentials shipped in the defaults.
const (
	DefaultSecretKey   = "secretKey"
	DefaultS3AccessKey = "admin"
	DefaultS3SecretKey = "secretpassword"
)

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey and the S3 credentials must be overridden in production.
func (c *Config) LoadDefaults() {
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "file:bank.db?_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	c.KDF = string(cryptox.KDFArgon2id)
	c.SecretKey = DefaultSecretKey
	c.ChallengeTTL = 3 * time.Minute
	c.ChallengeDigits = 6
	c.ChallengeMaxAttempts = 3
	c.SessionTTL = 15 * time.Minute
	c.SweepInterval = 30 * time.Second
	c.StoreTimeout = 5 * time.Second
	c.StoreRetries = 3
	c.StoreRetryBase = 50 * time.Millisecond
	c.Notifier = NotifierFile
	c.OutboxPath = "outbox.txt"
	c.S3AccessKey = DefaultS3AccessKey
	c.S3SecretKey = DefaultS3SecretKey
	c.S3Bucket = "bank-codes"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3Prefix = "codes"
	c.MetricsAddr = ""
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment (and ./.env), an optional JSON file and finally
// command-line flags. The result is validated.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, ".env")
	parseJson(cfg)
	parseFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every setting that would make the bank unsafe or unusable.
// Warnings lists settings that are valid but still carry development
// defaults.
func (c *Config) Warnings() []string {
	var w []string
	if c.SecretKey == DefaultSecretKey {
		w = append(w, "session tokens are signed with the built-in development secret key")
	}
	if c.Notifier == NotifierS3 && (c.S3AccessKey == DefaultS3AccessKey || c.S3SecretKey == DefaultS3SecretKey) {
		w = append(w, "s3 notifier uses the built-in development credentials")
	}
	return w
}

func (c *Config) Validate() error {
	var errs []error

	if _, err := dbx.DialectForDriver(c.DatabaseDriver); err != nil {
		errs = append(errs, err)
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database dsn is empty"))
	}
	if _, err := cryptox.ParseKDF(c.KDF); err != nil {
		errs = append(errs, err)
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	}
	if c.ChallengeDigits < cryptox.MinCodeDigits {
		errs = append(errs, fmt.Errorf("challenge digits must be at least %d", cryptox.MinCodeDigits))
	}
	if c.ChallengeMaxAttempts < 1 {
		errs = append(errs, errors.New("challenge max attempts must be positive"))
	}
	for name, d := range map[string]time.Duration{
		"challenge ttl":    c.ChallengeTTL,
		"session ttl":      c.SessionTTL,
		"sweep interval":   c.SweepInterval,
		"store timeout":    c.StoreTimeout,
		"store retry base": c.StoreRetryBase,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.StoreRetries < 0 {
		errs = append(errs, errors.New("store retries must not be negative"))
	}

	switch c.Notifier {
	case NotifierFile:
		if c.OutboxPath == "" {
			errs = append(errs, errors.New("outbox path is empty"))
		}
	case NotifierS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("s3 bucket is empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown notifier %q", c.Notifier))
	}

	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "BANK_"

// parseEnv overlays Config with BANK_* variables. Values already present in
// the process environment win over the ones read from dotenvPath; a missing
// dotenv file is not an error. Malformed values panic, matching the JSON and
// flag stages.
func parseEnv(config *Config, dotenvPath string) {
	dotenv := map[string]string{}
	if dotenvPath != "" {
		m, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			dotenv = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			panic(err)
		}
	}

	lookup := func(name string) (string, bool) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			return v, true
		}
		v, ok := dotenv[envPrefix+name]
		return v, ok
	}

	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(err)
			}
			*dst = n
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}

	str("DATABASE_DRIVER", &config.DatabaseDriver)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("KDF", &config.KDF)
	str("SECRET_KEY", &config.SecretKey)
	dur("CHALLENGE_TTL", &config.ChallengeTTL)
	num("CHALLENGE_DIGITS", &config.ChallengeDigits)
	num("CHALLENGE_MAX_ATTEMPTS", &config.ChallengeMaxAttempts)
	dur("SESSION_TTL", &config.SessionTTL)
	dur("SWEEP_INTERVAL", &config.SweepInterval)
	dur("STORE_TIMEOUT", &config.StoreTimeout)
	num("STORE_RETRIES", &config.StoreRetries)
	dur("STORE_RETRY_BASE", &config.StoreRetryBase)
	str("NOTIFIER", &config.Notifier)
	str("OUTBOX_PATH", &config.OutboxPath)
	str("S3_ACCESS_KEY", &config.S3AccessKey)
	str("S3_SECRET_KEY", &config.S3SecretKey)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("S3_PREFIX", &config.S3Prefix)
	str("METRICS_ADDR", &config.MetricsAddr)
	str("LOG_LEVEL", &config.LogLevel)
}

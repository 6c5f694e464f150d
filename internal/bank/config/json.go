package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/securebank/internal/flagx"
	"github.com/dmitrijs2005/securebank/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "3m" and integer nanoseconds are accepted.
type JsonConfig struct {
	DatabaseDriver       string         `json:"database_driver"`
	DatabaseDSN          string         `json:"database_dsn"`
	KDF                  string         `json:"kdf"`
	SecretKey            string         `json:"secret_key"`
	ChallengeTTL         timex.Duration `json:"challenge_ttl"`
	ChallengeDigits      int            `json:"challenge_digits"`
	ChallengeMaxAttempts int            `json:"challenge_max_attempts"`
	SessionTTL           timex.Duration `json:"session_ttl"`
	SweepInterval        timex.Duration `json:"sweep_interval"`
	StoreTimeout         timex.Duration `json:"store_timeout"`
	StoreRetries         int            `json:"store_retries"`
	StoreRetryBase       timex.Duration `json:"store_retry_base"`
	Notifier             string         `json:"notifier"`
	OutboxPath           string         `json:"outbox_path"`
	S3AccessKey          string         `json:"s3_access_key"`
	S3SecretKey          string         `json:"s3_secret_key"`
	S3Bucket             string         `json:"s3_bucket"`
	S3Region             string         `json:"s3_region"`
	S3BaseEndpoint       string         `json:"s3_base_endpoint"`
	S3Prefix             string         `json:"s3_prefix"`
	MetricsAddr          string         `json:"metrics_addr"`
	LogLevel             string         `json:"log_level"`
}

// parseJson overlays Config with the file named by -c or -config. Keys absent
// from the file keep their current values. An unreadable file or invalid JSON
// panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	fromJson(config, c)
}

func toJson(config *Config) *JsonConfig {
	return &JsonConfig{
		DatabaseDriver:       config.DatabaseDriver,
		DatabaseDSN:          config.DatabaseDSN,
		KDF:                  config.KDF,
		SecretKey:            config.SecretKey,
		ChallengeTTL:         timex.Duration{Duration: config.ChallengeTTL},
		ChallengeDigits:      config.ChallengeDigits,
		ChallengeMaxAttempts: config.ChallengeMaxAttempts,
		SessionTTL:           timex.Duration{Duration: config.SessionTTL},
		SweepInterval:        timex.Duration{Duration: config.SweepInterval},
		StoreTimeout:         timex.Duration{Duration: config.StoreTimeout},
		StoreRetries:         config.StoreRetries,
		StoreRetryBase:       timex.Duration{Duration: config.StoreRetryBase},
		Notifier:             config.Notifier,
		OutboxPath:           config.OutboxPath,
		S3AccessKey:          config.S3AccessKey,
		S3SecretKey:          config.S3SecretKey,
		S3Bucket:             config.S3Bucket,
		S3Region:             config.S3Region,
		S3BaseEndpoint:       config.S3BaseEndpoint,
		S3Prefix:             config.S3Prefix,
		MetricsAddr:          config.MetricsAddr,
		LogLevel:             config.LogLevel,
	}
}

func fromJson(config *Config, c *JsonConfig) {
	config.DatabaseDriver = c.DatabaseDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.KDF = c.KDF
	config.SecretKey = c.SecretKey
	config.ChallengeTTL = c.ChallengeTTL.Duration
	config.ChallengeDigits = c.ChallengeDigits
	config.ChallengeMaxAttempts = c.ChallengeMaxAttempts
	config.SessionTTL = c.SessionTTL.Duration
	config.SweepInterval = c.SweepInterval.Duration
	config.StoreTimeout = c.StoreTimeout.Duration
	config.StoreRetries = c.StoreRetries
	config.StoreRetryBase = c.StoreRetryBase.Duration
	config.Notifier = c.Notifier
	config.OutboxPath = c.OutboxPath
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3Prefix = c.S3Prefix
	config.MetricsAddr = c.MetricsAddr
	config.LogLevel = c.LogLevel
}

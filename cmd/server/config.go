package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the full server configuration, read from the environment.
type Config struct {
	Port        int    `env:"PORT, default=8080"`
	DatabaseURL string `env:"DATABASE_URL, required"`

	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT, default=30s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT, default=30s"`

	// Timezone is the zone used for day bucketing and usage patterns,
	// e.g. "Europe/Warsaw". Empty means UTC.
	Timezone string `env:"DASHBOARD_TZ"`

	// DefaultRangeDays is the window refreshed when the client does not
	// ask for one; 0 means all time.
	DefaultRangeDays int `env:"DEFAULT_RANGE_DAYS, default=0"`

	// EventFetchLimit caps one event fetch; 0 uses the built-in cap.
	EventFetchLimit int `env:"EVENT_FETCH_LIMIT, default=0"`

	LiveRefreshInterval time.Duration `env:"LIVE_REFRESH_INTERVAL, default=30s"`

	// CORSOrigin is the browser origin allowed to call the API, e.g. the
	// Sylius admin host. Empty disables CORS headers.
	CORSOrigin string `env:"CORS_ORIGIN"`

	IngestRatePerSecond float64 `env:"INGEST_RATE_PER_SECOND, default=10"`
	IngestBurst         int     `env:"INGEST_BURST, default=30"`

	// S3 report archival; disabled unless an endpoint is set.
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3Bucket          string `env:"S3_BUCKET, default=toolbox-reports"`
	S3UseSSL          bool   `env:"S3_USE_SSL, default=true"`
}

func loadConfig(ctx context.Context) (Config, error) {
	var config Config
	if err := envconfig.Process(ctx, &config); err != nil {
		return Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return config, nil
}

// Location resolves the configured timezone, defaulting to UTC.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"time"
)

// Config holds all application configuration loaded from environment variables.
// This struct uses github.com/caarlos0/env for automatic environment variable parsing.
//
// ============================================================
// DEVELOPER: Add new configuration fields here.
// ============================================================
// Use struct tags to define:
// - `env:"VAR_NAME"` - the environment variable name
// - `env:",required"` - make it required
// - `envDefault:"value"` - set a default value
//
// Catalog, rewards, bonus rules and notification sinks are not
// environment settings; they live in the YAML file at CONFIG_PATH.
// ============================================================
type Config struct {
	// ============================================================
	// Server configuration
	// ============================================================
	GRPCPort        int    `env:"GRPC_PORT" envDefault:"6565"`
	MetricsPort     int    `env:"METRICS_PORT" envDefault:"8080"`
	MetricsEndpoint string `env:"METRICS_ENDPOINT" envDefault:"/metrics"`
	Environment     string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName     string `env:"SERVICE_NAME" envDefault:"FitnessGamificationService"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`

	// ============================================================
	// Redis configuration
	// ============================================================
	RedisHost         string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort         string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisMaxRetries   int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	RedisRetryDelayMs int    `env:"REDIS_RETRY_DELAY_MS" envDefault:"1000"`

	// ============================================================
	// Ledger and redemption configuration
	// ============================================================
	// UOWMaxRetries bounds optimistic retries of one unit of work
	// before it fails with a contention error.
	UOWMaxRetries       int           `env:"UOW_MAX_RETRIES" envDefault:"5"`
	UOWRetryInterval    time.Duration `env:"UOW_RETRY_INTERVAL" envDefault:"5ms"`
	UOWMaxRetryInterval time.Duration `env:"UOW_MAX_RETRY_INTERVAL" envDefault:"100ms"`
	HistoryPageSize     int64         `env:"HISTORY_PAGE_SIZE" envDefault:"100"`
	ExpirySweepInterval time.Duration `env:"EXPIRY_SWEEP_INTERVAL" envDefault:"1m"`

	// ============================================================
	// Gamification configuration
	// ============================================================
	ConfigPath string `env:"CONFIG_PATH" envDefault:"config/gamification.yaml"`

	// ============================================================
	// Telemetry configuration
	// ============================================================
	// Spans are exported to OTEL_EXPORTER_ZIPKIN_ENDPOINT when it is set.
	OtelEnabled bool `env:"OTEL_ENABLED" envDefault:"true"`
	OtelID      int  `env:"OTEL_SERVICE_ID" envDefault:"1"`
}

// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package config

import "time"

// Config is the root configuration for the Insights service. It is built
// once at startup by Load and passed explicitly to every component that
// needs it; there are no process-wide configuration singletons.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Warehouse WarehouseConfig `koanf:"warehouse"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Cache     CacheConfig     `koanf:"cache"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// WarehouseConfig holds settings for the external events warehouse
// query endpoint. APIKey is deliberately allowed to be empty at startup:
// its absence is a per-request configuration error (fixed 500 message),
// so the service can boot and report not-ready instead of crash-looping.
type WarehouseConfig struct {
	URL              string        `koanf:"url"`
	ProjectID        string        `koanf:"project_id"`
	APIKey           string        `koanf:"api_key"`
	Timeout          time.Duration `koanf:"timeout"`
	QueriesPerSecond float64       `koanf:"queries_per_second"`
	QueryBurst       int           `koanf:"query_burst"`
}

// AnalyticsConfig carries the derivation heuristics. The bucket width and
// engaged-session threshold are observed product constants with no derived
// justification; they are configurable but the defaults match production.
type AnalyticsConfig struct {
	// Timezone is the fixed IANA reference timezone used for all
	// day-boundary alignment, independent of the server's local zone.
	Timezone string `koanf:"timezone"`

	// SessionBucket is the flooring width used to group practice events
	// into synthetic sessions.
	SessionBucket time.Duration `koanf:"session_bucket"`

	// EngagedMinDuration is the minimum warehouse-session duration for a
	// session to count as engaged.
	EngagedMinDuration time.Duration `koanf:"engaged_min_duration"`

	// CompletionThreshold is the minimum completion percentage for a
	// practice_completed event to count as a real completion.
	CompletionThreshold int `koanf:"completion_threshold"`
}

// CacheConfig holds the in-process analytics response cache settings.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8085,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Warehouse: WarehouseConfig{
			URL:              "https://eu.posthog.com",
			ProjectID:        "",
			APIKey:           "",
			Timeout:          30 * time.Second,
			QueriesPerSecond: 10,
			QueryBurst:       20,
		},
		Analytics: AnalyticsConfig{
			Timezone:            "Europe/Berlin",
			SessionBucket:       5 * time.Minute,
			EngagedMinDuration:  30 * time.Second,
			CompletionThreshold: 80,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Validation errors.
var (
	ErrInvalidPort          = errors.New("server port must be between 1 and 65535")
	ErrInvalidWarehouseURL  = errors.New("warehouse url must be a valid http(s) URL")
	ErrInvalidTimezone      = errors.New("analytics timezone must be a valid IANA zone name")
	ErrInvalidSessionBucket = errors.New("analytics session_bucket must be positive")
	ErrInvalidThreshold     = errors.New("analytics completion_threshold must be in [0,100]")
)

// Validate checks the merged configuration for values that would make the
// service misbehave at runtime. A missing warehouse API key is intentionally
// not a validation error; see WarehouseConfig.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Server.Port)
	}

	u, err := url.Parse(c.Warehouse.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: got %q", ErrInvalidWarehouseURL, c.Warehouse.URL)
	}

	if _, err := time.LoadLocation(c.Analytics.Timezone); err != nil {
		return fmt.Errorf("%w: got %q", ErrInvalidTimezone, c.Analytics.Timezone)
	}

	if c.Analytics.SessionBucket <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidSessionBucket, c.Analytics.SessionBucket)
	}

	if c.Analytics.CompletionThreshold < 0 || c.Analytics.CompletionThreshold > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreshold, c.Analytics.CompletionThreshold)
	}

	if c.Warehouse.Timeout <= 0 {
		c.Warehouse.Timeout = 30 * time.Second
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 5 * time.Minute
	}

	return nil
}

// Location resolves the configured reference timezone. Configs produced by
// Load always parse; hand-constructed configs with a bad zone get UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Analytics.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

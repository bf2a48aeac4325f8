// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

// Package config loads and validates the Insights service configuration.
//
// Configuration is layered with Koanf v2: built-in defaults, then an
// optional YAML file, then INSIGHTS_-prefixed environment variables.
// Precedence is ENV > file > defaults.
//
// Example:
//
//	INSIGHTS_SERVER_PORT=9090
//	INSIGHTS_WAREHOUSE_API_KEY=phx_...
//	INSIGHTS_ANALYTICS_TIMEZONE=Europe/Berlin
//
// The loaded *Config is passed explicitly to each component. Nothing in
// this package or its consumers keeps process-wide configuration state.
package config

// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package models

import "time"

// APIResponse is the envelope for all JSON API responses.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
//
// QueryTimeMS is the wall time spent computing the response, 0 when the
// response was served from the analytics cache (Cached true).
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError describes an API-level failure.
//
// Code is a stable machine-readable identifier:
//
//	VALIDATION_ERROR   - bad request parameters, nothing was queried
//	CONFIG_ERROR       - required warehouse credential absent
//	UPSTREAM_ERROR     - the warehouse returned a non-success status
//	MALFORMED_RESPONSE - the warehouse payload could not be decoded
//	INTERNAL_ERROR     - anything else
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

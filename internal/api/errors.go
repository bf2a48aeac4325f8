// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

// Package api provides HTTP handlers for the Insights analytics API.
//
// errors.go - mapping from internal error kinds to API error responses.
package api

import (
	"errors"
	"net/http"

	"github.com/stillpoint-app/insights/internal/warehouse"
)

// API error codes. Stable identifiers, part of the response contract.
const (
	codeValidation = "VALIDATION_ERROR"
	codeConfig     = "CONFIG_ERROR"
	codeUpstream   = "UPSTREAM_ERROR"
	codeMalformed  = "MALFORMED_RESPONSE"
	codeInternal   = "INTERNAL_ERROR"
)

// configErrorMessage is the fixed message for a missing warehouse
// credential. It never varies and never carries detail.
const configErrorMessage = "analytics warehouse credentials are not configured"

// maxUpstreamMessage bounds how much upstream error text is echoed back.
const maxUpstreamMessage = 512

// respondQueryError maps a failed metric computation to the response
// boundary. The taxonomy is strict: each warehouse error kind gets its
// own code and status so callers can tell a dead warehouse from a broken
// payload; everything unrecognized is an internal error.
func respondQueryError(w http.ResponseWriter, err error) {
	var qe *warehouse.QueryError
	if errors.As(err, &qe) {
		switch qe.Kind {
		case warehouse.KindConfig:
			respondError(w, http.StatusInternalServerError, codeConfig, configErrorMessage, nil)
		case warehouse.KindUpstream:
			status := qe.StatusCode
			if status < 400 || status > 599 {
				status = http.StatusBadGateway
			}
			respondError(w, status, codeUpstream, truncate(qe.Message, maxUpstreamMessage), err)
		case warehouse.KindMalformed:
			respondError(w, http.StatusInternalServerError, codeMalformed, "warehouse returned an unexpected payload shape", err)
		}
		return
	}
	respondError(w, http.StatusInternalServerError, codeInternal, "failed to compute metrics", err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package api

import (
	"context"
	"net/http"
)

// Sessions handles GET /api/v1/analytics/sessions. The payload is a flat
// array of reconstructed sessions, newest first.
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	params, days, err := parseRangeParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	h.execute(w, r, "sessions", params, func(ctx context.Context) (interface{}, error) {
		return h.svc.Sessions(ctx, days)
	})
}

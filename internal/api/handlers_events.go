// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package api

import (
	"context"
	"net/http"
)

// ErrorEvents handles GET /api/v1/events/errors. Unlike the analytics
// endpoints it takes explicit ISO bounds rather than an enumerated
// timeRange.
func (h *Handler) ErrorEvents(w http.ResponseWriter, r *http.Request) {
	params, err := parseDateRangeParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	h.execute(w, r, "error-events", params, func(ctx context.Context) (interface{}, error) {
		return h.svc.ErrorEvents(ctx, params.From, params.To)
	})
}

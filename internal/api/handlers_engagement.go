// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package api

import (
	"context"
	"net/http"
)

// Engagement handles GET /api/v1/analytics/engagement.
func (h *Handler) Engagement(w http.ResponseWriter, r *http.Request) {
	params, days, err := parseRangeParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	h.execute(w, r, "engagement", params, func(ctx context.Context) (interface{}, error) {
		return h.svc.EngagementSummary(ctx, days)
	})
}

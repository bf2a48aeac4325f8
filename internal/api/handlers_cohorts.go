// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package api

import (
	"context"
	"net/http"
)

// Cohorts handles GET /api/v1/analytics/cohorts.
func (h *Handler) Cohorts(w http.ResponseWriter, r *http.Request) {
	params, opts, err := parseCohortParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	h.execute(w, r, "cohorts", params, func(ctx context.Context) (interface{}, error) {
		return h.svc.CohortRetention(ctx, opts)
	})
}

// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package api

import (
	"context"
	"net/http"
)

// Habits handles GET /api/v1/analytics/habits. Leaderboard identities in
// the payload are already anonymized by the analyzer.
func (h *Handler) Habits(w http.ResponseWriter, r *http.Request) {
	params, days, err := parseRangeParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	h.execute(w, r, "habits", params, func(ctx context.Context) (interface{}, error) {
		return h.svc.PracticeHabits(ctx, days)
	})
}

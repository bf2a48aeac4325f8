// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/stillpoint-app/insights/internal/cache"
	"github.com/stillpoint-app/insights/internal/models"
)

// queryFunc computes the payload of one analytics response.
type queryFunc func(ctx context.Context) (interface{}, error)

// execute is the shared cache-first execution path of every analytics
// handler: check the cache under a key derived from the endpoint and its
// parameters, compute on miss, store, respond. Cached responses report
// QueryTimeMS 0 and Cached true. A response is either fully computed or
// an error; there is no partial success.
func (h *Handler) execute(w http.ResponseWriter, r *http.Request, keyPrefix string, params interface{}, fn queryFunc) {
	var key string
	if h.cache != nil {
		key = cache.GenerateKey(keyPrefix, params)
		if cached, found := h.cache.Get(key); found {
			respondJSON(w, http.StatusOK, &models.APIResponse{
				Status:   "success",
				Data:     cached,
				Metadata: models.Metadata{Timestamp: time.Now(), QueryTimeMS: 0, Cached: true},
			})
			return
		}
	}

	start := time.Now()
	data, err := fn(r.Context())
	if err != nil {
		respondQueryError(w, err)
		return
	}

	if h.cache != nil {
		h.cache.Set(key, data)
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now(), QueryTimeMS: time.Since(start).Milliseconds()},
	})
}

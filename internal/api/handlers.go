// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package api

import (
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/stillpoint-app/insights/internal/analytics"
	"github.com/stillpoint-app/insights/internal/cache"
	"github.com/stillpoint-app/insights/internal/config"
	"github.com/stillpoint-app/insights/internal/models"
)

// BreakerStater reports circuit breaker state for readiness probes.
type BreakerStater interface {
	State() gobreaker.State
}

// Handler carries the dependencies of all API handlers. Everything is
// injected; handlers hold no request state.
type Handler struct {
	svc     *analytics.Service
	cache   *cache.Cache
	cfg     *config.Config
	breaker BreakerStater
}

// NewHandler creates a Handler. cache and breaker may be nil; caching is
// skipped and readiness omits breaker state respectively.
func NewHandler(svc *analytics.Service, c *cache.Cache, cfg *config.Config, breaker BreakerStater) *Handler {
	return &Handler{svc: svc, cache: c, cfg: cfg, breaker: breaker}
}

// HealthLive always reports success while the process serves requests.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "alive"},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthReady verifies request preconditions: the warehouse credential
// must be present and the circuit breaker must not be open.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	data := map[string]string{"status": "ready"}
	status := http.StatusOK

	if h.cfg.Warehouse.APIKey == "" {
		data["status"] = "not_ready"
		data["reason"] = configErrorMessage
		status = http.StatusServiceUnavailable
	}

	if h.breaker != nil {
		state := h.breaker.State()
		data["warehouse_circuit"] = state.String()
		if state == gobreaker.StateOpen {
			data["status"] = "not_ready"
			data["reason"] = "warehouse circuit breaker is open"
			status = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// Health reports a service summary.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"service":        "insights",
			"warehouse_url":  h.cfg.Warehouse.URL,
			"cache_enabled":  h.cfg.Cache.Enabled,
			"reference_zone": h.cfg.Analytics.Timezone,
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

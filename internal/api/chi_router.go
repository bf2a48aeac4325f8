// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stillpoint-app/insights/internal/config"
	"github.com/stillpoint-app/insights/internal/middleware"
)

// Router wires handlers and middleware into the HTTP route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router for the given handler and server settings.
func NewRouter(handler *Handler, cfg *config.ServerConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(cfg.CORSOrigins, cfg.RateLimitReqs, cfg.RateLimitWindow),
	}
}

// Setup builds the full route tree. The service is read-only; every data
// endpoint is a GET.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order. CORS is global
	// so OPTIONS preflight is answered everywhere.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/engagement", router.handler.Engagement)
		r.Get("/sessions", router.handler.Sessions)
		r.Get("/habits", router.handler.Habits)
		r.Get("/cohorts", router.handler.Cohorts)
	})

	r.Route("/api/v1/events", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/errors", router.handler.ErrorEvents)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

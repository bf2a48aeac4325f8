// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/stillpoint-app/insights/internal/logging"
)

// ChiMiddleware provides Chi-compatible middleware factories built from
// the server configuration.
type ChiMiddleware struct {
	corsOrigins     []string
	rateLimitReqs   int
	rateLimitWindow time.Duration
	cors            func(http.Handler) http.Handler
}

// NewChiMiddleware creates the middleware factory. An empty origins list
// disables cross-origin access entirely; "*" must be configured
// explicitly.
func NewChiMiddleware(corsOrigins []string, rateLimitReqs int, rateLimitWindow time.Duration) *ChiMiddleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag", "X-Request-ID"},
		MaxAge:         86400,
	})

	return &ChiMiddleware{
		corsOrigins:     corsOrigins,
		rateLimitReqs:   rateLimitReqs,
		rateLimitWindow: rateLimitWindow,
		cors:            corsHandler,
	}
}

// CORS returns the shared CORS middleware. It is applied globally so that
// OPTIONS preflight requests are answered on every route.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns an IP-keyed rate limiter for the analytics endpoints.
// A non-positive request count disables limiting.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	if m.rateLimitReqs <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.LimitByRealIP(m.rateLimitReqs, m.rateLimitWindow)
}

// RateLimitHealth is a permissive limiter for health probes. Monitoring
// tools poll these endpoints far more often than users hit analytics.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return httprate.LimitByRealIP(1000, time.Minute)
}

// APISecurityHeaders adds the standard response hardening headers. HSTS
// is set only when the request arrived over TLS, directly or via a
// terminating proxy.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDWithLogging assigns each request an ID, echoes it in the
// X-Request-ID response header and attaches it to the logging context so
// every log line of the request carries it. An inbound X-Request-ID is
// honored for cross-service correlation.
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logging.GenerateRequestID()
			}

			w.Header().Set("X-Request-ID", requestID)
			ctx := logging.ContextWithRequestID(r.Context(), requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

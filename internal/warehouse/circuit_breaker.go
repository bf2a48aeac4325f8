// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package warehouse

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/stillpoint-app/insights/internal/logging"
	"github.com/stillpoint-app/insights/internal/metrics"
)

// CircuitBreakerClient wraps a Querier with a circuit breaker so that a
// degraded warehouse does not stall every analytics request behind
// timeouts. The breaker uses real time for its interval and timeout
// bookkeeping; tests exercise the wrapped Querier directly.
type CircuitBreakerClient struct {
	querier Querier
	cb      *gobreaker.CircuitBreaker[[]Row]
	name    string
}

// NewCircuitBreakerClient wraps querier with a breaker that opens at a
// 60% failure rate over at least 10 requests, stays open for 2 minutes,
// and admits 3 trial requests in half-open state.
func NewCircuitBreakerClient(querier Querier) *CircuitBreakerClient {
	const name = "warehouse-query"

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]Row](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("opening warehouse circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
		IsSuccessful: func(err error) bool {
			// Pre-flight config errors and caller cancellations say nothing
			// about warehouse health and must not trip the breaker.
			var qe *QueryError
			if errors.As(err, &qe) && qe.Kind == KindConfig {
				return true
			}
			if errors.Is(err, context.Canceled) {
				return true
			}
			return err == nil
		},
	})

	return &CircuitBreakerClient{querier: querier, cb: cb, name: name}
}

// Query executes the query through the circuit breaker.
func (c *CircuitBreakerClient) Query(ctx context.Context, query string) ([]Row, error) {
	rows, err := c.cb.Execute(func() ([]Row, error) {
		return c.querier.Query(ctx, query)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &QueryError{Kind: KindUpstream, StatusCode: 0, Message: "warehouse temporarily unavailable: " + err.Error()}
		}
		return nil, err
	}
	return rows, nil
}

// State reports the current breaker state for readiness reporting.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.cb.State()
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

// Package warehouse is the HTTP client for the external behavioral-events
// warehouse. It executes warehouse-dialect query strings and returns raw
// rows; it owns no storage and does no aggregation. Row decoding is
// deliberately defensive: the warehouse reports scalars as strings,
// numbers or date-like objects depending on column type and version.
package warehouse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/stillpoint-app/insights/internal/config"
	"github.com/stillpoint-app/insights/internal/metrics"
)

// maxErrorBodySize bounds how much of an error response body is read back
// for diagnostics.
const maxErrorBodySize = 64 * 1024

// Row is one result row: an ordered tuple of warehouse-typed scalars.
type Row []interface{}

// Querier executes a single warehouse query and returns its rows.
// Implemented by Client and by the circuit-breaker wrapper; handlers and
// the analytics service only ever see this interface.
type Querier interface {
	Query(ctx context.Context, query string) ([]Row, error)
}

// Client talks to the warehouse query endpoint. Safe for concurrent use.
type Client struct {
	cfg     config.WarehouseConfig
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a warehouse client from configuration.
func NewClient(cfg config.WarehouseConfig) *Client {
	qps := cfg.QueriesPerSecond
	if qps <= 0 {
		qps = 10
	}
	burst := cfg.QueryBurst
	if burst <= 0 {
		burst = int(qps)
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(qps), burst),
	}
}

// queryRequest is the wire shape of a query submission.
type queryRequest struct {
	Query struct {
		Kind  string `json:"kind"`
		Query string `json:"query"`
	} `json:"query"`
}

// queryResponse accepts both payload shapes the warehouse is known to
// produce: a top-level results array, or the same array nested under
// responseData.
type queryResponse struct {
	Results      []Row `json:"results"`
	ResponseData *struct {
		Results []Row `json:"results"`
	} `json:"responseData"`
}

// Query executes one warehouse-dialect query string and returns its rows.
// A missing API key fails pre-flight with ErrAPIKeyMissing. Upstream and
// decoding failures are returned as *QueryError with the matching kind;
// nothing is retried here.
func (c *Client) Query(ctx context.Context, query string) ([]Row, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	var reqBody queryRequest
	reqBody.Query.Kind = "HogQLQuery"
	reqBody.Query.Query = query

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal query request: %w", err)
	}

	url := fmt.Sprintf("%s/api/projects/%s/query",
		strings.TrimSuffix(c.cfg.URL, "/"), c.cfg.ProjectID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.WarehouseQueryErrors.WithLabelValues("transport").Inc()
		return nil, &QueryError{Kind: KindUpstream, StatusCode: 0, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.WarehouseQueryDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.WarehouseQueryErrors.WithLabelValues("upstream").Inc()
		return nil, &QueryError{
			Kind:       KindUpstream,
			StatusCode: resp.StatusCode,
			Message:    string(readBodyForError(resp.Body)),
		}
	}

	var decoded queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.WarehouseQueryErrors.WithLabelValues("malformed").Inc()
		return nil, &QueryError{Kind: KindMalformed, Message: err.Error()}
	}

	if decoded.Results != nil {
		return decoded.Results, nil
	}
	if decoded.ResponseData != nil {
		return decoded.ResponseData.Results, nil
	}

	metrics.WarehouseQueryErrors.WithLabelValues("malformed").Inc()
	return nil, &QueryError{Kind: KindMalformed, Message: "response contains neither results nor responseData.results"}
}

// readBodyForError reads at most maxErrorBodySize of a response body for
// error reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

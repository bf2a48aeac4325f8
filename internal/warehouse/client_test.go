// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package warehouse

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/stillpoint-app/insights/internal/config"
)

func testClientConfig(url string) config.WarehouseConfig {
	return config.WarehouseConfig{
		URL:              url,
		ProjectID:        "12345",
		APIKey:           "phx_test",
		Timeout:          5 * time.Second,
		QueriesPerSecond: 1000,
		QueryBurst:       1000,
	}
}

func TestClientQuery_TopLevelResults(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[["2026-07-15T10:00:00Z","practice_started","u1","s1",{}]]}`))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL))
	rows, err := client.Query(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if gotPath != "/api/projects/12345/query" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer phx_test" {
		t.Errorf("auth header = %q", gotAuth)
	}

	query, _ := gotBody["query"].(map[string]interface{})
	if query["kind"] != "HogQLQuery" {
		t.Errorf("query kind = %v, want HogQLQuery", query["kind"])
	}
	if query["query"] != "SELECT 1" {
		t.Errorf("query body = %v", query["query"])
	}
}

func TestClientQuery_NestedResponseData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responseData":{"results":[["u1","2026-06-01"],["u2","2026-06-02"]]}}`))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL))
	rows, err := client.Query(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 from nested shape", len(rows))
	}
}

func TestClientQuery_MissingAPIKey(t *testing.T) {
	cfg := testClientConfig("http://localhost:1")
	cfg.APIKey = ""

	client := NewClient(cfg)
	_, err := client.Query(context.Background(), "SELECT 1")
	if !errors.Is(err, ErrAPIKeyMissing) {
		t.Fatalf("err = %v, want ErrAPIKeyMissing", err)
	}

	var qe *QueryError
	if !errors.As(err, &qe) || qe.Kind != KindConfig {
		t.Errorf("error kind = %v, want KindConfig", err)
	}
}

func TestClientQuery_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "query too complex", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL))
	_, err := client.Query(context.Background(), "SELECT 1")

	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("err = %v, want *QueryError", err)
	}
	if qe.Kind != KindUpstream {
		t.Errorf("Kind = %v, want KindUpstream", qe.Kind)
	}
	if qe.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", qe.StatusCode)
	}
}

func TestClientQuery_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL))
	_, err := client.Query(context.Background(), "SELECT 1")

	var qe *QueryError
	if !errors.As(err, &qe) || qe.Kind != KindMalformed {
		t.Fatalf("err = %v, want KindMalformed", err)
	}
}

func TestClientQuery_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{truncated`))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL))
	_, err := client.Query(context.Background(), "SELECT 1")

	var qe *QueryError
	if !errors.As(err, &qe) || qe.Kind != KindMalformed {
		t.Fatalf("err = %v, want KindMalformed", err)
	}
}

func TestClientQuery_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL))
	rows, err := client.Query(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package analytics

import (
	"testing"
	"time"

	"github.com/stillpoint-app/insights/internal/warehouse"
)

func TestNormalizeRow(t *testing.T) {
	valid := warehouse.Row{
		"2026-07-15T10:00:00Z",
		"practice_started",
		"u1",
		"s1",
		map[string]interface{}{"practice_id": "p1", "completion_percentage": float64(95)},
	}

	ev, ok := NormalizeRow(valid)
	if !ok {
		t.Fatal("valid row dropped")
	}
	if !ev.Timestamp.Equal(time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Timestamp = %v", ev.Timestamp)
	}
	if ev.EventName != "practice_started" || ev.UserID != "u1" || ev.SessionID != "s1" {
		t.Errorf("fields = %q %q %q", ev.EventName, ev.UserID, ev.SessionID)
	}
	if ev.Properties["practice_id"] != "p1" {
		t.Errorf("practice_id = %q, want p1", ev.Properties["practice_id"])
	}
	if ev.Properties["completion_percentage"] != "95" {
		t.Errorf("completion_percentage = %q, want stringified 95", ev.Properties["completion_percentage"])
	}
}

func TestNormalizeRow_Drops(t *testing.T) {
	tests := []struct {
		name string
		row  warehouse.Row
	}{
		{"too short", warehouse.Row{"2026-07-15T10:00:00Z", "event"}},
		{"bad timestamp", warehouse.Row{"yesterday-ish", "event", "u1", "s1", nil}},
		{"nil timestamp", warehouse.Row{nil, "event", "u1", "s1", nil}},
		{"empty event name", warehouse.Row{"2026-07-15T10:00:00Z", "", "u1", "s1", nil}},
		{"empty user id", warehouse.Row{"2026-07-15T10:00:00Z", "event", "", "s1", nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := NormalizeRow(tt.row); ok {
				t.Error("malformed row accepted")
			}
		})
	}
}

func TestNormalizeRow_SessionlessAccepted(t *testing.T) {
	row := warehouse.Row{"2026-07-15T10:00:00Z", "app_opened", "u1", nil, nil}
	ev, ok := NormalizeRow(row)
	if !ok {
		t.Fatal("sessionless row dropped; session ID is optional")
	}
	if ev.SessionID != "" {
		t.Errorf("SessionID = %q, want empty", ev.SessionID)
	}
}

func TestNormalizeRows_FiltersWithoutFailing(t *testing.T) {
	rows := []warehouse.Row{
		{"2026-07-15T10:00:00Z", "practice_started", "u1", "s1", nil},
		{"garbage", "practice_started", "u1", "s1", nil},
		{"2026-07-15T11:00:00Z", "practice_completed", "u2", "s2", nil},
	}

	events := NormalizeRows(rows)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (one dropped)", len(events))
	}
}

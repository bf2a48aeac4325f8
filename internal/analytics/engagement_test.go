// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stillpoint-app/insights/internal/models"
)

func TestComputeEngagement_Empty(t *testing.T) {
	agg := ComputeEngagement(nil, 30*time.Second)

	if agg.DAU != 0 || agg.TotalSessions != 0 || agg.EngagedSessions != 0 {
		t.Errorf("empty input produced non-zero counts: %+v", agg)
	}
	if agg.SessionsPerDAU != 0 {
		t.Errorf("SessionsPerDAU = %v, want 0 without division panic", agg.SessionsPerDAU)
	}
	if agg.EngagedSessionsRate != 0 {
		t.Errorf("EngagedSessionsRate = %v, want 0", agg.EngagedSessionsRate)
	}
}

func TestComputeEngagement_EngagedSession(t *testing.T) {
	base := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)

	events := []models.NormalizedEvent{
		practiceEvent(models.EventPracticeStarted, "u1", "s1", base, nil),
		practiceEvent(models.EventPracticeCompleted, "u1", "s1", base.Add(45*time.Second), nil),
	}

	agg := ComputeEngagement(events, 30*time.Second)
	if agg.DAU != 1 {
		t.Errorf("DAU = %d, want 1", agg.DAU)
	}
	if agg.TotalSessions != 1 {
		t.Errorf("TotalSessions = %d, want 1", agg.TotalSessions)
	}
	if agg.EngagedSessions != 1 {
		t.Errorf("EngagedSessions = %d, want 1 (engaged event, 45s span)", agg.EngagedSessions)
	}
	if math.Abs(agg.AvgSessionDuration-45) > 1e-9 {
		t.Errorf("AvgSessionDuration = %v, want 45", agg.AvgSessionDuration)
	}
}

func TestComputeEngagement_TooShortNotEngaged(t *testing.T) {
	base := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)

	events := []models.NormalizedEvent{
		practiceEvent(models.EventPracticeStarted, "u1", "s1", base, nil),
		practiceEvent(models.EventPracticeCompleted, "u1", "s1", base.Add(10*time.Second), nil),
	}

	agg := ComputeEngagement(events, 30*time.Second)
	if agg.EngagedSessions != 0 {
		t.Errorf("EngagedSessions = %d, want 0 (10s span below threshold)", agg.EngagedSessions)
	}
}

func TestComputeEngagement_NoEngagedEvent(t *testing.T) {
	base := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)

	// Long session but no engagement-qualifying event.
	events := []models.NormalizedEvent{
		practiceEvent(models.EventAppOpened, "u1", "s1", base, nil),
		practiceEvent(models.EventAppOpened, "u1", "s1", base.Add(5*time.Minute), nil),
	}

	agg := ComputeEngagement(events, 30*time.Second)
	if agg.TotalSessions != 1 {
		t.Errorf("TotalSessions = %d, want 1", agg.TotalSessions)
	}
	if agg.EngagedSessions != 0 {
		t.Errorf("EngagedSessions = %d, want 0 without engaged event", agg.EngagedSessions)
	}
}

func TestComputeEngagement_WarehouseSessionGrouping(t *testing.T) {
	base := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)

	// Same session ID on two users stays two groups; two session IDs on
	// one user stays two groups.
	events := []models.NormalizedEvent{
		practiceEvent(models.EventPracticeStarted, "u1", "shared", base, nil),
		practiceEvent(models.EventPracticeStarted, "u2", "shared", base, nil),
		practiceEvent(models.EventPracticeStarted, "u1", "other", base, nil),
	}

	agg := ComputeEngagement(events, 30*time.Second)
	if agg.TotalSessions != 3 {
		t.Errorf("TotalSessions = %d, want 3", agg.TotalSessions)
	}
	if agg.DAU != 2 {
		t.Errorf("DAU = %d, want 2", agg.DAU)
	}
	if math.Abs(agg.SessionsPerDAU-1.5) > 1e-9 {
		t.Errorf("SessionsPerDAU = %v, want 1.5", agg.SessionsPerDAU)
	}
}

func TestComputeEngagement_EventsWithoutSessionStillCountDAU(t *testing.T) {
	base := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)

	events := []models.NormalizedEvent{
		practiceEvent(models.EventAppOpened, "u1", "", base, nil),
	}

	agg := ComputeEngagement(events, 30*time.Second)
	if agg.DAU != 1 {
		t.Errorf("DAU = %d, want 1 (sessionless events count users)", agg.DAU)
	}
	if agg.TotalSessions != 0 {
		t.Errorf("TotalSessions = %d, want 0", agg.TotalSessions)
	}
}

func TestPracticeDistribution(t *testing.T) {
	base := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)

	var events []models.NormalizedEvent
	starts := map[string]int{"u1": 1, "u2": 3, "u3": 5, "u4": 12}
	for userID, n := range starts {
		for i := 0; i < n; i++ {
			events = append(events, practiceEvent(models.EventPracticeStarted, userID, "s", base, nil))
		}
	}
	// A user with no practice starts is excluded from the histogram.
	events = append(events, practiceEvent(models.EventAppOpened, "u5", "s", base, nil))

	agg := ComputeEngagement(events, 30*time.Second)
	dist := agg.PracticeDistribution()
	if len(dist) != 4 {
		t.Fatalf("got %d buckets, want 4", len(dist))
	}

	want := map[string]int{"1": 1, "2-3": 1, "4-7": 1, "8+": 1}
	for _, b := range dist {
		if b.Count != want[b.Bucket] {
			t.Errorf("bucket %q count = %d, want %d", b.Bucket, b.Count, want[b.Bucket])
		}
		if math.Abs(b.Percentage-25) > 1e-9 {
			t.Errorf("bucket %q percentage = %v, want 25 (of four practicing users)", b.Bucket, b.Percentage)
		}
	}
}

func TestPracticeDistribution_Empty(t *testing.T) {
	agg := ComputeEngagement(nil, 30*time.Second)
	for _, b := range agg.PracticeDistribution() {
		if b.Count != 0 || b.Percentage != 0 {
			t.Errorf("bucket %q = %+v, want zeros", b.Bucket, b)
		}
	}
}

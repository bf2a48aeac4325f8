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

func completionOn(userID string, day time.Time, practiceType, pct string) models.NormalizedEvent {
	return models.NormalizedEvent{
		Timestamp: day,
		EventName: models.EventPracticeCompleted,
		UserID:    userID,
		SessionID: "s",
		Properties: map[string]string{
			"practice_id":           "p1",
			"practice_type":         practiceType,
			"completion_percentage": pct,
		},
	}
}

func TestComputeStreaks_CumulativeBuckets(t *testing.T) {
	base := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	// Ten distinct practice days: lands in 3+ and 7+, not 14+.
	var events []models.NormalizedEvent
	for i := 0; i < 10; i++ {
		events = append(events, completionOn("u1", base.AddDate(0, 0, i), "breathing", "90"))
	}

	agg := ComputeStreaks(events, time.UTC, 80)
	if agg.BucketCounts[3] != 1 {
		t.Errorf("3+ bucket = %d, want 1", agg.BucketCounts[3])
	}
	if agg.BucketCounts[7] != 1 {
		t.Errorf("7+ bucket = %d, want 1", agg.BucketCounts[7])
	}
	if agg.BucketCounts[14] != 0 {
		t.Errorf("14+ bucket = %d, want 0", agg.BucketCounts[14])
	}
}

func TestComputeStreaks_SameDayCountsOnce(t *testing.T) {
	base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

	events := []models.NormalizedEvent{
		completionOn("u1", base, "breathing", "90"),
		completionOn("u1", base.Add(6*time.Hour), "breathing", "90"),
		completionOn("u1", base.AddDate(0, 0, 1), "breathing", "90"),
	}

	agg := ComputeStreaks(events, time.UTC, 80)
	if len(agg.TopStreaks) != 1 {
		t.Fatalf("got %d leaderboard entries, want 1", len(agg.TopStreaks))
	}
	if got := agg.TopStreaks[0].DaysWithPractice; got != 2 {
		t.Errorf("DaysWithPractice = %d, want 2 (three completions over two days)", got)
	}
}

func TestComputeStreaks_BelowThresholdIgnored(t *testing.T) {
	base := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	events := []models.NormalizedEvent{
		completionOn("u1", base, "breathing", "40"),
	}

	agg := ComputeStreaks(events, time.UTC, 80)
	if len(agg.TopStreaks) != 0 {
		t.Errorf("sub-threshold completion produced a streak entry")
	}
	if agg.TotalUsers != 1 {
		t.Errorf("TotalUsers = %d, want 1 (user still counted in window)", agg.TotalUsers)
	}
}

func TestComputeStreaks_ARPPA(t *testing.T) {
	base := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	events := []models.NormalizedEvent{
		completionOn("u1", base, "breathing", "90"),
		completionOn("u1", base.AddDate(0, 0, 1), "breathing", "90"),
		completionOn("u2", base, "breathing", "90"),
		completionOn("u2", base, "meditation", "90"),
	}

	agg := ComputeStreaks(events, time.UTC, 80)

	// breathing: 3 completions over 2 active users.
	if got := agg.ARPPA["breathing"]; math.Abs(got-1.5) > 1e-9 {
		t.Errorf("ARPPA[breathing] = %v, want 1.5", got)
	}
	if got := agg.ARPPA["meditation"]; math.Abs(got-1) > 1e-9 {
		t.Errorf("ARPPA[meditation] = %v, want 1", got)
	}
	// No entry for a type nobody practiced.
	if _, ok := agg.ARPPA["sleep"]; ok {
		t.Error("ARPPA must omit types with zero active users")
	}
}

func TestComputeStreaks_LeaderboardAnonymizedAndCapped(t *testing.T) {
	base := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	var events []models.NormalizedEvent
	for u := 0; u < 12; u++ {
		userID := string(rune('a' + u))
		for d := 0; d <= u; d++ {
			events = append(events, completionOn(userID, base.AddDate(0, 0, d), "breathing", "90"))
		}
	}

	agg := ComputeStreaks(events, time.UTC, 80)
	if len(agg.TopStreaks) != 10 {
		t.Fatalf("leaderboard length = %d, want capped at 10", len(agg.TopStreaks))
	}
	for i, entry := range agg.TopStreaks {
		if entry.UserID != "anonymous" {
			t.Errorf("entry %d UserID = %q, want redacted", i, entry.UserID)
		}
		if i > 0 && entry.DaysWithPractice > agg.TopStreaks[i-1].DaysWithPractice {
			t.Errorf("leaderboard not sorted by days descending at %d", i)
		}
	}
	if agg.TopStreaks[0].DaysWithPractice != 12 {
		t.Errorf("top entry days = %d, want 12", agg.TopStreaks[0].DaysWithPractice)
	}
}

func TestBucketPercentage(t *testing.T) {
	agg := StreaksAggregate{TotalUsers: 4, BucketCounts: map[int]int{3: 1}}
	if got := agg.BucketPercentage(3); math.Abs(got-25) > 1e-9 {
		t.Errorf("BucketPercentage(3) = %v, want 25", got)
	}

	empty := StreaksAggregate{}
	if got := empty.BucketPercentage(3); got != 0 {
		t.Errorf("BucketPercentage on empty window = %v, want 0", got)
	}
}

func TestComputeStreaks_TimezoneDaySplit(t *testing.T) {
	loc := berlin(t)

	// 23:30 UTC and 00:30 UTC next day are both July 2 in Berlin (UTC+2).
	events := []models.NormalizedEvent{
		completionOn("u1", time.Date(2026, 7, 1, 22, 30, 0, 0, time.UTC), "breathing", "90"),
		completionOn("u1", time.Date(2026, 7, 2, 0, 30, 0, 0, time.UTC), "breathing", "90"),
	}

	agg := ComputeStreaks(events, loc, 80)
	if len(agg.TopStreaks) != 1 {
		t.Fatalf("got %d leaderboard entries, want 1", len(agg.TopStreaks))
	}
	if got := agg.TopStreaks[0].DaysWithPractice; got != 1 {
		t.Errorf("DaysWithPractice = %d, want 1 (both events on the same Berlin day)", got)
	}
}

// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package analytics

import (
	"sort"
	"time"

	"github.com/stillpoint-app/insights/internal/models"
)

// streakThresholds are the cumulative practice-day buckets. A user is
// counted in every bucket their day count reaches: ten distinct days
// lands in 3+ and 7+ but not 14+.
var streakThresholds = []int{3, 7, 14}

// StreaksAggregate holds per-window practice habit metrics.
type StreaksAggregate struct {
	// TotalUsers is the count of distinct users with any event in the
	// window; it is the denominator of the bucket percentages.
	TotalUsers int

	// BucketCounts maps threshold (3, 7, 14) to the number of users with
	// at least that many distinct practice days.
	BucketCounts map[int]int

	// ARPPA maps practice type to average qualifying completions per user
	// active in that type. Types with zero active users are absent, never
	// NaN or Inf.
	ARPPA map[string]float64

	// TopStreaks is the leaderboard, at most ten entries, identity
	// already redacted.
	TopStreaks []models.StreakEntry
}

// BucketPercentage returns a bucket count as a share of all users in the
// window, 0 when the window has no users.
func (s StreaksAggregate) BucketPercentage(threshold int) float64 {
	if s.TotalUsers == 0 {
		return 0
	}
	return float64(s.BucketCounts[threshold]) / float64(s.TotalUsers) * 100
}

// ComputeStreaks derives practice-day streak metrics from all events of a
// window. A practice day is a distinct calendar day, in the reference
// timezone loc, on which the user has at least one practice completion at
// or above completionThreshold percent.
//
// Leaderboard identities are replaced with an opaque placeholder here, in
// the component, so no caller can accidentally leak user IDs.
func ComputeStreaks(events []models.NormalizedEvent, loc *time.Location, completionThreshold int) StreaksAggregate {
	users := make(map[string]bool)
	daysByUser := make(map[string]map[string]bool)
	typesByUser := make(map[string]map[string]bool)
	completionsByType := make(map[string]int)
	activeByType := make(map[string]map[string]bool)

	for _, ev := range events {
		if ev.UserID == "" {
			continue
		}
		users[ev.UserID] = true

		if ev.EventName != models.EventPracticeCompleted {
			continue
		}
		if completionPct(ev) < completionThreshold {
			continue
		}

		day := ev.Timestamp.In(loc).Format("2006-01-02")
		if daysByUser[ev.UserID] == nil {
			daysByUser[ev.UserID] = make(map[string]bool)
		}
		daysByUser[ev.UserID][day] = true

		practiceType := ev.Properties["practice_type"]
		if practiceType == "" {
			continue
		}
		completionsByType[practiceType]++
		if activeByType[practiceType] == nil {
			activeByType[practiceType] = make(map[string]bool)
		}
		activeByType[practiceType][ev.UserID] = true

		if typesByUser[ev.UserID] == nil {
			typesByUser[ev.UserID] = make(map[string]bool)
		}
		typesByUser[ev.UserID][practiceType] = true
	}

	agg := StreaksAggregate{
		TotalUsers:   len(users),
		BucketCounts: make(map[int]int, len(streakThresholds)),
		ARPPA:        make(map[string]float64, len(completionsByType)),
	}

	type ranked struct {
		days  int
		types int
	}
	leaderboard := make([]ranked, 0, len(daysByUser))

	for userID, days := range daysByUser {
		for _, threshold := range streakThresholds {
			if len(days) >= threshold {
				agg.BucketCounts[threshold]++
			}
		}
		leaderboard = append(leaderboard, ranked{days: len(days), types: len(typesByUser[userID])})
	}

	for practiceType, active := range activeByType {
		agg.ARPPA[practiceType] = float64(completionsByType[practiceType]) / float64(len(active))
	}

	sort.Slice(leaderboard, func(i, j int) bool {
		if leaderboard[i].days != leaderboard[j].days {
			return leaderboard[i].days > leaderboard[j].days
		}
		return leaderboard[i].types > leaderboard[j].types
	})
	if len(leaderboard) > 10 {
		leaderboard = leaderboard[:10]
	}

	agg.TopStreaks = make([]models.StreakEntry, 0, len(leaderboard))
	for _, entry := range leaderboard {
		agg.TopStreaks = append(agg.TopStreaks, models.StreakEntry{
			UserID:           "anonymous",
			DaysWithPractice: entry.days,
			PracticeTypes:    entry.types,
		})
	}

	return agg
}

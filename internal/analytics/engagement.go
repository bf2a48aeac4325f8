// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package analytics

import (
	"time"

	"github.com/stillpoint-app/insights/internal/models"
)

// engagedEventNames are the events whose presence (plus a minimum
// duration) marks a warehouse session as engaged.
var engagedEventNames = map[string]bool{
	models.EventPracticeStarted:    true,
	models.EventMoodCheckinStarted: true,
}

// EngagementAggregate holds the engagement metrics of one window. Ratios
// are plain floats; rounding for display happens at the API boundary.
type EngagementAggregate struct {
	DAU                 int
	TotalSessions       int
	EngagedSessions     int
	SessionsPerDAU      float64
	EngagedSessionsRate float64
	AvgSessionDuration  float64 // seconds

	// practiceSessionsPerUser counts practice_started events per user,
	// feeding the user distribution histogram.
	practiceSessionsPerUser map[string]int
}

// sessionGroup accumulates one (sessionID, userID) group.
type sessionGroup struct {
	first   time.Time
	last    time.Time
	engaged bool
}

// ComputeEngagement derives engagement metrics from all events of a
// window. Unlike session reconstruction this path trusts the
// warehouse-native session identifier: grouping is by the literal
// (sessionID, userID) pair as delivered by the event stream.
func ComputeEngagement(events []models.NormalizedEvent, engagedMinDuration time.Duration) EngagementAggregate {
	type groupKey struct {
		sessionID string
		userID    string
	}

	groups := make(map[groupKey]*sessionGroup)
	users := make(map[string]bool)
	practicePerUser := make(map[string]int)

	for _, ev := range events {
		if ev.UserID == "" {
			continue
		}
		users[ev.UserID] = true

		if ev.EventName == models.EventPracticeStarted {
			practicePerUser[ev.UserID]++
		}

		if ev.SessionID == "" {
			continue
		}

		key := groupKey{sessionID: ev.SessionID, userID: ev.UserID}
		g, ok := groups[key]
		if !ok {
			groups[key] = &sessionGroup{first: ev.Timestamp, last: ev.Timestamp, engaged: engagedEventNames[ev.EventName]}
			continue
		}
		if ev.Timestamp.Before(g.first) {
			g.first = ev.Timestamp
		}
		if ev.Timestamp.After(g.last) {
			g.last = ev.Timestamp
		}
		if engagedEventNames[ev.EventName] {
			g.engaged = true
		}
	}

	agg := EngagementAggregate{
		DAU:                     len(users),
		TotalSessions:           len(groups),
		practiceSessionsPerUser: practicePerUser,
	}

	var totalDuration float64
	for _, g := range groups {
		duration := g.last.Sub(g.first)
		totalDuration += duration.Seconds()
		if g.engaged && duration >= engagedMinDuration {
			agg.EngagedSessions++
		}
	}

	if agg.TotalSessions > 0 {
		agg.AvgSessionDuration = totalDuration / float64(agg.TotalSessions)
		agg.EngagedSessionsRate = float64(agg.EngagedSessions) / float64(agg.TotalSessions)
	}

	dau := agg.DAU
	if dau < 1 {
		dau = 1
	}
	agg.SessionsPerDAU = float64(agg.TotalSessions) / float64(dau)

	return agg
}

// distributionBuckets are the histogram edges for practice sessions per
// user, labeled for the dashboard.
var distributionBuckets = []struct {
	label string
	min   int
	max   int // inclusive; -1 means unbounded
}{
	{"1", 1, 1},
	{"2-3", 2, 3},
	{"4-7", 4, 7},
	{"8+", 8, -1},
}

// PracticeDistribution buckets users by how many practice sessions they
// started in the window. Users with zero practice starts are excluded
// from the histogram; percentages are relative to users with at least
// one.
func (a EngagementAggregate) PracticeDistribution() []models.DistributionBucket {
	total := len(a.practiceSessionsPerUser)
	out := make([]models.DistributionBucket, 0, len(distributionBuckets))

	counts := make([]int, len(distributionBuckets))
	for _, n := range a.practiceSessionsPerUser {
		for i, b := range distributionBuckets {
			if n >= b.min && (b.max < 0 || n <= b.max) {
				counts[i]++
				break
			}
		}
	}

	for i, b := range distributionBuckets {
		pct := 0.0
		if total > 0 {
			pct = float64(counts[i]) / float64(total) * 100
		}
		out = append(out, models.DistributionBucket{Bucket: b.label, Count: counts[i], Percentage: pct})
	}

	return out
}

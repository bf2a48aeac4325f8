// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

// This file contains the response payload types for each metric family.
// JSON keys are part of the public API contract consumed by the dashboard
// and are stable; do not rename without a versioned endpoint.
package models

// EngagementSummary is the payload of /api/v1/analytics/engagement.
type EngagementSummary struct {
	SessionsPerDAU      MetricWithDelta  `json:"sessionsPerDAU"`
	EngagedSessionsRate MetricWithDelta  `json:"engagedSessionsRate"`
	AvgSessionDuration  MetricWithDelta  `json:"avgSessionDuration"`
	UserDistribution    UserDistribution `json:"userDistribution"`
}

// UserDistribution groups users by how many practice sessions they ran
// in the window.
type UserDistribution struct {
	Practices []DistributionBucket `json:"practices"`
}

// DistributionBucket is one bar of a distribution histogram.
type DistributionBucket struct {
	Bucket     string  `json:"bucket"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SessionView is one reconstructed session as presented by
// /api/v1/analytics/sessions. Sorted by Timestamp descending.
type SessionView struct {
	SessionID    string `json:"sessionId"`
	PracticeID   string `json:"practiceId"`
	PracticeName string `json:"practiceName"`
	PracticeType string `json:"practiceType"`
	UserID       string `json:"userId"`
	Timestamp    string `json:"timestamp"`
	Completed    bool   `json:"completed"`
	Country      string `json:"country"`
}

// PracticeHabits is the payload of /api/v1/analytics/habits.
type PracticeHabits struct {
	Summary    HabitsSummary      `json:"summary"`
	ARPPA      map[string]float64 `json:"arppa"`
	TopStreaks []StreakEntry      `json:"topStreaks"`
}

// HabitsSummary holds the cumulative streak-threshold buckets. A user with
// ten practice days counts in the 3+ and 7+ buckets but not 14+.
type HabitsSummary struct {
	UsersWithStreak3Plus  StreakBucket `json:"usersWithStreak3Plus"`
	UsersWithStreak7Plus  StreakBucket `json:"usersWithStreak7Plus"`
	UsersWithStreak14Plus StreakBucket `json:"usersWithStreak14Plus"`
}

// StreakBucket is a bucket count plus its share of all users in the window.
type StreakBucket struct {
	Value      int     `json:"value"`
	Percentage float64 `json:"percentage"`
}

// StreakEntry is one leaderboard row. UserID is always the literal
// "anonymous"; identity redaction happens inside the analyzer, not in the
// handler.
type StreakEntry struct {
	UserID           string `json:"userId"`
	DaysWithPractice int    `json:"daysWithPractice"`
	PracticeTypes    int    `json:"practiceTypes"`
}

// CohortRetentionReport is the payload of /api/v1/analytics/cohorts.
type CohortRetentionReport struct {
	Cohorts  []CohortRow    `json:"cohorts"`
	Metadata CohortMetadata `json:"metadata"`
}

// CohortRow is one signup cohort with whole-percent retention per offset.
type CohortRow struct {
	CohortDate string         `json:"cohortDate"`
	CohortSize int            `json:"cohortSize"`
	Retention  map[string]int `json:"retention"`
}

// CohortMetadata echoes the request parameters that shaped the report.
type CohortMetadata struct {
	Bucket    string            `json:"bucket"`
	TimeRange string            `json:"timeRange"`
	Filters   map[string]string `json:"filters"`
}

// ErrorEvent is one row of the error-event feed.
type ErrorEvent struct {
	EventName  string            `json:"eventName"`
	UserID     string            `json:"userId"`
	Timestamp  string            `json:"timestamp"`
	Properties map[string]string `json:"properties"`
}

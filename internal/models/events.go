// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

// Package models provides data structures for the Insights service.
// This file contains the normalized event and session-accumulator types
// shared by the derivation components.
package models

import "time"

// Event names recognized by the derivation components. These match the
// names the mobile clients capture into the warehouse.
const (
	EventPracticeStarted      = "practice_started"
	EventPracticeCompleted    = "practice_completed"
	EventMoodCheckinStarted   = "mood_checkin_started"
	EventMoodCheckinCompleted = "mood_checkin_completed"
	EventOnboardingStarted    = "onboarding_started"
	EventAppOpened            = "app_opened"
)

// NormalizedEvent is the strictly-typed form of one raw warehouse row.
// Rows that cannot produce a well-formed timestamp or user ID never become
// NormalizedEvents; they are dropped at the decoding boundary.
type NormalizedEvent struct {
	Timestamp  time.Time
	EventName  string
	UserID     string
	SessionID  string // warehouse-native session ID; may be empty
	Properties map[string]string
}

// CompletionState describes how far a synthetic session progressed.
type CompletionState int

const (
	StateStarted CompletionState = iota
	StateCompleted
	StateMoodCheckin
)

// String returns the lowercase state name.
func (s CompletionState) String() string {
	switch s {
	case StateCompleted:
		return "completed"
	case StateMoodCheckin:
		return "moodCheckin"
	default:
		return "started"
	}
}

// InferredSession accumulates events that share a synthetic session key
// (user, practice, 5-minute bucket). It is mutated only while the
// reconstruction pass runs and is immutable once emitted.
type InferredSession struct {
	SessionKey           string
	SessionID            string // warehouse label, display only
	UserID               string
	PracticeID           string
	PracticeName         string
	PracticeType         string
	Timestamp            time.Time // latest event timestamp seen for the key
	State                CompletionState
	CompletionPercentage int
	Country              string
}

// CohortBucket is one signup cohort with its retained-user counts.
// Invariant: RetainedCounts[d] <= CohortSize for every offset d.
type CohortBucket struct {
	CohortDate     time.Time
	CohortSize     int
	RetainedCounts map[int]int
}

// MetricWithDelta pairs a metric value with its previous-period value and
// the percentage change between them (delta convention: 0 only when both
// are zero; 100 when previous is zero and value is positive).
type MetricWithDelta struct {
	Value    float64 `json:"value"`
	Previous float64 `json:"previous"`
	Delta    float64 `json:"delta"`
}

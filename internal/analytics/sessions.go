// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/stillpoint-app/insights/internal/models"
)

// sessionRelevant lists the event names that participate in session
// reconstruction.
var sessionRelevant = map[string]bool{
	models.EventPracticeStarted:      true,
	models.EventPracticeCompleted:    true,
	models.EventMoodCheckinCompleted: true,
}

// sessionKey is the synthetic session identity: the warehouse-provided
// session ID is carried through only as a display label, never for
// grouping.
type sessionKey struct {
	userID     string
	practiceID string
	bucket     int64
}

// ReconstructSessions groups practice events into inferred sessions.
//
// Events are keyed by (user, practice, bucket) where bucket is the event
// timestamp floored to the nearest preceding bucketWidth boundary. Events
// for the same key merge with priority rules: a completion at or above
// completionThreshold percent wins over everything except an earlier
// completion, and a mood check-in wins over everything except a
// completion (forcing 100%). The accumulator timestamp always advances to
// the later of the two timestamps compared.
//
// Known heuristic limit: the same practice started twice by one user
// within one bucket collapses into a single session. Two different
// practices in the same bucket stay separate only because practiceID
// differs.
//
// The result is sorted by timestamp descending; the ordering is a
// presentation concern, not part of the grouping contract.
func ReconstructSessions(events []models.NormalizedEvent, bucketWidth time.Duration, completionThreshold int) []models.InferredSession {
	if bucketWidth <= 0 {
		bucketWidth = 5 * time.Minute
	}
	bucketMillis := bucketWidth.Milliseconds()

	accumulators := make(map[sessionKey]*models.InferredSession)

	for _, ev := range events {
		if !sessionRelevant[ev.EventName] {
			continue
		}

		practiceID := ev.Properties["practice_id"]
		if ev.SessionID == "" || practiceID == "" || ev.UserID == "" || ev.Timestamp.IsZero() {
			continue
		}

		bucket := ev.Timestamp.UnixMilli() / bucketMillis * bucketMillis
		key := sessionKey{userID: ev.UserID, practiceID: practiceID, bucket: bucket}

		state, pct := eventState(ev, completionThreshold)

		acc, exists := accumulators[key]
		if !exists {
			accumulators[key] = &models.InferredSession{
				SessionKey:           fmt.Sprintf("%s:%s:%d", ev.UserID, practiceID, bucket),
				SessionID:            ev.SessionID,
				UserID:               ev.UserID,
				PracticeID:           practiceID,
				PracticeName:         ev.Properties["practice_name"],
				PracticeType:         ev.Properties["practice_type"],
				Timestamp:            ev.Timestamp,
				State:                state,
				CompletionPercentage: pct,
				Country:              ev.Properties["country"],
			}
			continue
		}

		mergeSessionEvent(acc, ev, state, pct, completionThreshold)
	}

	sessions := make([]models.InferredSession, 0, len(accumulators))
	for _, acc := range accumulators {
		sessions = append(sessions, *acc)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].Timestamp.Equal(sessions[j].Timestamp) {
			return sessions[i].Timestamp.After(sessions[j].Timestamp)
		}
		return sessions[i].SessionKey < sessions[j].SessionKey
	})

	return sessions
}

// eventState maps an event to its accumulator state and completion
// percentage.
func eventState(ev models.NormalizedEvent, completionThreshold int) (models.CompletionState, int) {
	switch ev.EventName {
	case models.EventPracticeCompleted:
		return models.StateCompleted, completionPct(ev)
	case models.EventMoodCheckinCompleted:
		return models.StateMoodCheckin, 100
	default:
		return models.StateStarted, completionPct(ev)
	}
}

// mergeSessionEvent applies the priority-merge rules for a later event
// landing on an existing accumulator.
func mergeSessionEvent(acc *models.InferredSession, ev models.NormalizedEvent, state models.CompletionState, pct, completionThreshold int) {
	switch {
	case state == models.StateCompleted && pct >= completionThreshold && acc.State != models.StateCompleted:
		acc.State = models.StateCompleted
		acc.CompletionPercentage = pct
	case state == models.StateMoodCheckin && acc.State != models.StateCompleted:
		acc.State = models.StateMoodCheckin
		acc.CompletionPercentage = 100
	}

	// Timestamp advances regardless of which branch fired.
	if ev.Timestamp.After(acc.Timestamp) {
		acc.Timestamp = ev.Timestamp
	}

	if acc.PracticeName == "" {
		acc.PracticeName = ev.Properties["practice_name"]
	}
	if acc.PracticeType == "" {
		acc.PracticeType = ev.Properties["practice_type"]
	}
	if acc.Country == "" {
		acc.Country = ev.Properties["country"]
	}
}

// SessionCompleted reports the final completed flag for an emitted
// session: a completion at or above the threshold, or a mood check-in. A
// lone started event is not completed.
func SessionCompleted(s models.InferredSession, completionThreshold int) bool {
	if s.State == models.StateMoodCheckin {
		return true
	}
	return s.State == models.StateCompleted && s.CompletionPercentage >= completionThreshold
}

// completionPct reads the completion_percentage property, clamped to
// [0,100]. Absent or unparseable values count as 0.
func completionPct(ev models.NormalizedEvent) int {
	raw := ev.Properties["completion_percentage"]
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return int(f)
}

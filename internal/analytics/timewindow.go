// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package analytics

import (
	"strconv"
	"time"
)

// TimeWindow is a half-open interval [Start, End) on the universal clock.
// Day-aligned windows are anchored to local midnight in the fixed reference
// timezone, never the server's local zone.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// MidnightUTC returns the instant of local midnight, in loc, of the
// calendar day containing ref. The UTC offset is resolved at the target
// date, so DST transitions and non-whole-hour zones come out right. If
// the offset label cannot be parsed the offset degrades to zero (UTC)
// rather than failing the request.
func MidnightUTC(ref time.Time, loc *time.Location) time.Time {
	local := ref.In(loc)
	offsetMinutes := parseOffsetMinutes(local.Format("-07:00"))

	year, month, day := local.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return midnight.Add(-time.Duration(offsetMinutes) * time.Minute)
}

// parseOffsetMinutes converts a "+02:00" / "-05:45" offset label into
// minutes east of UTC. Unparseable labels yield 0.
func parseOffsetMinutes(label string) int {
	if len(label) != 6 || label[3] != ':' {
		return 0
	}
	sign := 1
	switch label[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0
	}
	hours, err := strconv.Atoi(label[1:3])
	if err != nil || hours < 0 {
		return 0
	}
	minutes, err := strconv.Atoi(label[4:6])
	if err != nil || minutes < 0 {
		return 0
	}
	return sign * (hours*60 + minutes)
}

// DayWindow returns the reference-timezone day containing ref as
// [midnight, midnight+24h).
func DayWindow(ref time.Time, loc *time.Location) TimeWindow {
	midnight := MidnightUTC(ref, loc)
	return TimeWindow{Start: midnight, End: midnight.Add(24 * time.Hour)}
}

// LastNDays returns the window covering the n reference-timezone days
// ending with (and including) the day containing now.
func LastNDays(n int, now time.Time, loc *time.Location) TimeWindow {
	today := DayWindow(now, loc)
	return TimeWindow{
		Start: today.End.Add(-time.Duration(n) * 24 * time.Hour),
		End:   today.End,
	}
}

// CoarseWindow returns a fixed day-count window ending at now with no
// timezone correction. Week and month windows intentionally use this
// cruder arithmetic while day windows go through MidnightUTC; the
// asymmetry is inherited behavior and is kept as a separate code path.
func CoarseWindow(days int, now time.Time) TimeWindow {
	return TimeWindow{
		Start: now.Add(-time.Duration(days) * 24 * time.Hour),
		End:   now,
	}
}

// PreviousWindow returns the window of equal length immediately before w.
func PreviousWindow(w TimeWindow) TimeWindow {
	length := w.End.Sub(w.Start)
	return TimeWindow{Start: w.Start.Add(-length), End: w.Start}
}

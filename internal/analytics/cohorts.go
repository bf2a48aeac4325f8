// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/stillpoint-app/insights/internal/models"
)

// CohortGranularity selects the calendar bucketing of signup cohorts.
type CohortGranularity string

const (
	BucketWeekly  CohortGranularity = "weekly"
	BucketMonthly CohortGranularity = "monthly"
)

// RetentionOffsets are the day offsets at which return activity is
// measured. The activity lookback must extend 90 days (the largest
// offset) past the nominal window end so late offsets of early cohorts
// stay measurable; callers must not clip it to the input window.
var RetentionOffsets = []int{0, 1, 7, 14, 30, 60, 90}

// MaxRetentionOffsetDays is the asymmetric lookback extension.
const MaxRetentionOffsetDays = 90

// BuildCohorts assigns each signup to its calendar cohort and counts
// return activity per day offset.
//
// signups maps user ID to the instant of the user's first qualifying
// onboarding-start event. activity maps user ID to the set of reference-
// timezone calendar days ("2006-01-02") with any qualifying activity. A
// user is retained at offset d when they have activity on their own
// signup day plus d days; the cohort date only labels the group.
//
// Retention across offsets is not monotonic and no ordering between
// offsets is guaranteed; the only invariant is RetainedCounts[d] <=
// CohortSize. Cohorts younger than one day relative to now are dropped:
// not enough elapsed time to report even D1.
func BuildCohorts(signups map[string]time.Time, activity map[string]map[string]bool, granularity CohortGranularity, now time.Time, loc *time.Location) []models.CohortBucket {
	byDate := make(map[time.Time]*models.CohortBucket)

	for userID, signupAt := range signups {
		signupLocal := signupAt.In(loc)
		signupDay := time.Date(signupLocal.Year(), signupLocal.Month(), signupLocal.Day(), 0, 0, 0, 0, loc)
		cohortDate := bucketStart(signupDay, granularity)

		bucket, ok := byDate[cohortDate]
		if !ok {
			bucket = &models.CohortBucket{
				CohortDate:     cohortDate,
				RetainedCounts: make(map[int]int, len(RetentionOffsets)),
			}
			byDate[cohortDate] = bucket
		}
		bucket.CohortSize++

		days := activity[userID]
		if days == nil {
			continue
		}
		for _, offset := range RetentionOffsets {
			day := signupDay.AddDate(0, 0, offset).Format("2006-01-02")
			if days[day] {
				bucket.RetainedCounts[offset]++
			}
		}
	}

	cohorts := make([]models.CohortBucket, 0, len(byDate))
	cutoff := now.Add(-24 * time.Hour)
	for _, bucket := range byDate {
		if bucket.CohortDate.After(cutoff) {
			continue
		}
		cohorts = append(cohorts, *bucket)
	}

	sort.Slice(cohorts, func(i, j int) bool {
		return cohorts[i].CohortDate.Before(cohorts[j].CohortDate)
	})

	return cohorts
}

// bucketStart floors a local calendar day to its cohort bucket start:
// Monday for weekly buckets, the first of the month for monthly.
func bucketStart(day time.Time, granularity CohortGranularity) time.Time {
	if granularity == BucketMonthly {
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	}
	weekday := int(day.Weekday())
	// time.Weekday has Sunday=0; shift so Monday starts the week.
	offset := (weekday + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// RetentionPercent converts a retained count into a whole percent of the
// cohort. Rounding happens here, at the boundary, never inside the
// aggregation.
func RetentionPercent(retained, cohortSize int) int {
	if cohortSize <= 0 {
		return 0
	}
	return int(math.Round(float64(retained) / float64(cohortSize) * 100))
}

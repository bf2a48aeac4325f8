// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stillpoint-app/insights/internal/config"
	"github.com/stillpoint-app/insights/internal/logging"
	"github.com/stillpoint-app/insights/internal/models"
	"github.com/stillpoint-app/insights/internal/warehouse"
)

// Service executes the warehouse queries behind each metric family and
// applies the derivation components. All accumulators are request-scoped;
// Service itself holds only configuration and the query client, so it is
// safe for concurrent use across requests.
type Service struct {
	q   warehouse.Querier
	cfg config.AnalyticsConfig
	loc *time.Location

	// now is swappable in tests.
	now func() time.Time
}

// NewService creates an analytics service over the given query client.
func NewService(q warehouse.Querier, cfg config.AnalyticsConfig, loc *time.Location) *Service {
	return &Service{q: q, cfg: cfg, loc: loc, now: time.Now}
}

// eventColumnsSelect is the shared projection for event queries; its
// column order is the contract NormalizeRow decodes.
const eventColumnsSelect = "SELECT timestamp, event, distinct_id, properties.$session_id, properties FROM events"

// queryEvents fetches and normalizes all events of a window, optionally
// restricted to the given event names.
func (s *Service) queryEvents(ctx context.Context, w TimeWindow, eventNames []string) ([]models.NormalizedEvent, error) {
	var b strings.Builder
	b.WriteString(eventColumnsSelect)
	fmt.Fprintf(&b, " WHERE timestamp >= toDateTime('%s') AND timestamp < toDateTime('%s')",
		queryTime(w.Start), queryTime(w.End))
	if len(eventNames) > 0 {
		b.WriteString(" AND event IN (")
		for i, name := range eventNames {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("'" + escapeQueryString(name) + "'")
		}
		b.WriteString(")")
	}
	b.WriteString(" ORDER BY timestamp")

	rows, err := s.q.Query(ctx, b.String())
	if err != nil {
		return nil, err
	}

	events := NormalizeRows(rows)
	if dropped := len(rows) - len(events); dropped > 0 {
		logging.Ctx(ctx).Debug().Int("dropped", dropped).Msg("dropped malformed event rows")
	}
	return events, nil
}

// EngagementSummary computes the engagement metric family for the last
// `days` reference-timezone days, with deltas against the immediately
// preceding window of equal length. The two window queries are
// independent and run concurrently; either failing fails the response.
func (s *Service) EngagementSummary(ctx context.Context, days int) (*models.EngagementSummary, error) {
	current := LastNDays(days, s.now(), s.loc)
	previous := PreviousWindow(current)

	var (
		currentEvents  []models.NormalizedEvent
		previousEvents []models.NormalizedEvent
		currentErr     error
		previousErr    error
		wg             sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		currentEvents, currentErr = s.queryEvents(ctx, current, nil)
	}()
	go func() {
		defer wg.Done()
		previousEvents, previousErr = s.queryEvents(ctx, previous, nil)
	}()
	wg.Wait()

	if currentErr != nil {
		return nil, fmt.Errorf("current window query failed: %w", currentErr)
	}
	if previousErr != nil {
		return nil, fmt.Errorf("previous window query failed: %w", previousErr)
	}

	cur := ComputeEngagement(currentEvents, s.cfg.EngagedMinDuration)
	prev := ComputeEngagement(previousEvents, s.cfg.EngagedMinDuration)

	return &models.EngagementSummary{
		SessionsPerDAU:      WithDelta(cur.SessionsPerDAU, prev.SessionsPerDAU),
		EngagedSessionsRate: WithDelta(cur.EngagedSessionsRate, prev.EngagedSessionsRate),
		AvgSessionDuration:  WithDelta(cur.AvgSessionDuration, prev.AvgSessionDuration),
		UserDistribution:    models.UserDistribution{Practices: cur.PracticeDistribution()},
	}, nil
}

// Sessions reconstructs practice sessions for the last `days` days,
// newest first.
func (s *Service) Sessions(ctx context.Context, days int) ([]models.SessionView, error) {
	window := LastNDays(days, s.now(), s.loc)

	events, err := s.queryEvents(ctx, window, []string{
		models.EventPracticeStarted,
		models.EventPracticeCompleted,
		models.EventMoodCheckinCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("session events query failed: %w", err)
	}

	sessions := ReconstructSessions(events, s.cfg.SessionBucket, s.cfg.CompletionThreshold)

	views := make([]models.SessionView, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, models.SessionView{
			SessionID:    sess.SessionID,
			PracticeID:   sess.PracticeID,
			PracticeName: sess.PracticeName,
			PracticeType: sess.PracticeType,
			UserID:       sess.UserID,
			Timestamp:    sess.Timestamp.UTC().Format(time.RFC3339),
			Completed:    SessionCompleted(sess, s.cfg.CompletionThreshold),
			Country:      sess.Country,
		})
	}
	return views, nil
}

// PracticeHabits computes streak buckets, ARPPA and the anonymized
// leaderboard for the last `days` days.
func (s *Service) PracticeHabits(ctx context.Context, days int) (*models.PracticeHabits, error) {
	window := LastNDays(days, s.now(), s.loc)

	events, err := s.queryEvents(ctx, window, nil)
	if err != nil {
		return nil, fmt.Errorf("habit events query failed: %w", err)
	}

	agg := ComputeStreaks(events, s.loc, s.cfg.CompletionThreshold)

	return &models.PracticeHabits{
		Summary: models.HabitsSummary{
			UsersWithStreak3Plus:  models.StreakBucket{Value: agg.BucketCounts[3], Percentage: agg.BucketPercentage(3)},
			UsersWithStreak7Plus:  models.StreakBucket{Value: agg.BucketCounts[7], Percentage: agg.BucketPercentage(7)},
			UsersWithStreak14Plus: models.StreakBucket{Value: agg.BucketCounts[14], Percentage: agg.BucketPercentage(14)},
		},
		ARPPA:      agg.ARPPA,
		TopStreaks: agg.TopStreaks,
	}, nil
}

// CohortOptions parameterizes a cohort retention report.
type CohortOptions struct {
	Days        int
	Granularity CohortGranularity
	TimeRange   string

	// Optional filters. They narrow cohort membership only; the activity
	// matching query is never filtered.
	Platform string
	Country  string
	Premium  *bool
}

// activityEventNames are the events that count as a return visit for
// retention measurement.
var activityEventNames = []string{
	models.EventAppOpened,
	models.EventPracticeStarted,
	models.EventPracticeCompleted,
	models.EventMoodCheckinCompleted,
}

// CohortRetention assigns users to signup cohorts and measures day-offset
// return rates. The membership and activity queries are independent and
// run concurrently. The cohort lookback window is the coarse uncorrected
// kind; the activity query extends 90 days past its end so the late
// offsets of early cohorts are measurable.
func (s *Service) CohortRetention(ctx context.Context, opts CohortOptions) (*models.CohortRetentionReport, error) {
	now := s.now()
	window := CoarseWindow(opts.Days, now)

	var (
		signups     map[string]time.Time
		activity    map[string]map[string]bool
		signupsErr  error
		activityErr error
		wg          sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		signups, signupsErr = s.queryCohortSignups(ctx, window, opts)
	}()
	go func() {
		defer wg.Done()
		activity, activityErr = s.queryCohortActivity(ctx, window)
	}()
	wg.Wait()

	if signupsErr != nil {
		return nil, fmt.Errorf("cohort membership query failed: %w", signupsErr)
	}
	if activityErr != nil {
		return nil, fmt.Errorf("cohort activity query failed: %w", activityErr)
	}

	cohorts := BuildCohorts(signups, activity, opts.Granularity, now, s.loc)

	rows := make([]models.CohortRow, 0, len(cohorts))
	for _, cohort := range cohorts {
		retention := make(map[string]int, len(RetentionOffsets))
		for _, offset := range RetentionOffsets {
			retention[fmt.Sprintf("day%d", offset)] = RetentionPercent(cohort.RetainedCounts[offset], cohort.CohortSize)
		}
		rows = append(rows, models.CohortRow{
			CohortDate: cohort.CohortDate.Format("2006-01-02"),
			CohortSize: cohort.CohortSize,
			Retention:  retention,
		})
	}

	filters := map[string]string{}
	if opts.Platform != "" {
		filters["platform"] = opts.Platform
	}
	if opts.Country != "" {
		filters["country"] = opts.Country
	}
	if opts.Premium != nil {
		filters["premium"] = fmt.Sprintf("%t", *opts.Premium)
	}

	return &models.CohortRetentionReport{
		Cohorts: rows,
		Metadata: models.CohortMetadata{
			Bucket:    string(opts.Granularity),
			TimeRange: opts.TimeRange,
			Filters:   filters,
		},
	}, nil
}

// queryCohortSignups returns each user's first qualifying onboarding
// start inside the lookback window, with optional membership filters.
func (s *Service) queryCohortSignups(ctx context.Context, w TimeWindow, opts CohortOptions) (map[string]time.Time, error) {
	var b strings.Builder
	b.WriteString("SELECT distinct_id, min(timestamp) AS first_seen FROM events")
	fmt.Fprintf(&b, " WHERE event = '%s'", models.EventOnboardingStarted)
	fmt.Fprintf(&b, " AND timestamp >= toDateTime('%s') AND timestamp < toDateTime('%s')",
		queryTime(w.Start), queryTime(w.End))
	if opts.Platform != "" {
		fmt.Fprintf(&b, " AND properties.platform = '%s'", escapeQueryString(opts.Platform))
	}
	if opts.Country != "" {
		fmt.Fprintf(&b, " AND properties.country = '%s'", escapeQueryString(opts.Country))
	}
	if opts.Premium != nil {
		fmt.Fprintf(&b, " AND properties.is_premium = '%t'", *opts.Premium)
	}
	b.WriteString(" GROUP BY distinct_id")

	rows, err := s.q.Query(ctx, b.String())
	if err != nil {
		return nil, err
	}

	signups := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		userID := warehouse.String(row[0])
		ts, ok := warehouse.Time(row[1])
		if userID == "" || !ok {
			continue
		}
		signups[userID] = ts
	}
	return signups, nil
}

// queryCohortActivity returns, per user, the set of reference-timezone
// calendar days with qualifying activity. The scan range is the lookback
// window extended by the maximum retention offset.
func (s *Service) queryCohortActivity(ctx context.Context, w TimeWindow) (map[string]map[string]bool, error) {
	extendedEnd := w.End.AddDate(0, 0, MaxRetentionOffsetDays)

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT DISTINCT distinct_id, toDate(timestamp, '%s') AS activity_day FROM events",
		escapeQueryString(s.cfg.Timezone))
	b.WriteString(" WHERE event IN (")
	for i, name := range activityEventNames {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("'" + escapeQueryString(name) + "'")
	}
	b.WriteString(")")
	fmt.Fprintf(&b, " AND timestamp >= toDateTime('%s') AND timestamp < toDateTime('%s')",
		queryTime(w.Start), queryTime(extendedEnd))

	rows, err := s.q.Query(ctx, b.String())
	if err != nil {
		return nil, err
	}

	activity := make(map[string]map[string]bool)
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		userID := warehouse.String(row[0])
		day := warehouse.String(row[1])
		if userID == "" || len(day) < 10 {
			continue
		}
		day = day[:10]
		if activity[userID] == nil {
			activity[userID] = make(map[string]bool)
		}
		activity[userID][day] = true
	}
	return activity, nil
}

// errorPropertyKeys is the subset of properties exposed by the error feed.
var errorPropertyKeys = []string{"error_message", "error_code", "screen", "platform", "app_version"}

// ErrorEvents returns normalized error events between the explicit
// bounds, newest first.
func (s *Service) ErrorEvents(ctx context.Context, from, to time.Time) ([]models.ErrorEvent, error) {
	var b strings.Builder
	b.WriteString(eventColumnsSelect)
	fmt.Fprintf(&b, " WHERE (event = '$exception' OR event LIKE 'error_%%')")
	fmt.Fprintf(&b, " AND timestamp >= toDateTime('%s') AND timestamp < toDateTime('%s')",
		queryTime(from), queryTime(to))
	b.WriteString(" ORDER BY timestamp DESC")

	rows, err := s.q.Query(ctx, b.String())
	if err != nil {
		return nil, fmt.Errorf("error events query failed: %w", err)
	}

	events := NormalizeRows(rows)
	out := make([]models.ErrorEvent, 0, len(events))
	for _, ev := range events {
		props := make(map[string]string)
		for _, key := range errorPropertyKeys {
			if v, ok := ev.Properties[key]; ok && v != "" {
				props[key] = v
			}
		}
		out = append(out, models.ErrorEvent{
			EventName:  ev.EventName,
			UserID:     ev.UserID,
			Timestamp:  ev.Timestamp.UTC().Format(time.RFC3339),
			Properties: props,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

// queryTime formats an instant for embedding in a warehouse query.
func queryTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// escapeQueryString doubles single quotes so values embed safely in
// query literals.
func escapeQueryString(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), "'", "''")
}

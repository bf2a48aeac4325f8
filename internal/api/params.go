// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stillpoint-app/insights/internal/analytics"
)

// validate is the shared validator instance; validator.Validate is
// thread-safe and caches struct metadata.
var validate = validator.New()

// timeRangeDays maps the enumerated timeRange values to day counts.
var timeRangeDays = map[string]int{
	"7d":   7,
	"30d":  30,
	"90d":  90,
	"180d": 180,
}

// rangeParams are the query parameters of the simple analytics endpoints.
// 180d is reserved for cohorts and rejected here.
type rangeParams struct {
	TimeRange string `validate:"required,oneof=7d 30d 90d"`
}

// cohortParams are the query parameters of the cohort endpoint. The
// optional filters narrow cohort membership only.
type cohortParams struct {
	TimeRange string `validate:"required,oneof=7d 30d 90d 180d"`
	Bucket    string `validate:"required,oneof=weekly monthly"`
	Platform  string `validate:"omitempty,max=64"`
	Country   string `validate:"omitempty,max=64"`
	Premium   string `validate:"omitempty,oneof=true false"`
}

// parseRangeParams reads and validates timeRange, defaulting to 30d.
// Validation happens before any warehouse call; a bad value is a local
// 400, never an upstream error.
func parseRangeParams(r *http.Request) (rangeParams, int, error) {
	p := rangeParams{TimeRange: r.URL.Query().Get("timeRange")}
	if p.TimeRange == "" {
		p.TimeRange = "30d"
	}
	if err := validate.Struct(p); err != nil {
		return p, 0, fmt.Errorf("unsupported timeRange %q (expected 7d, 30d or 90d)", p.TimeRange)
	}
	return p, timeRangeDays[p.TimeRange], nil
}

// parseCohortParams reads and validates the cohort endpoint parameters.
func parseCohortParams(r *http.Request) (cohortParams, analytics.CohortOptions, error) {
	q := r.URL.Query()
	p := cohortParams{
		TimeRange: q.Get("timeRange"),
		Bucket:    q.Get("bucket"),
		Platform:  q.Get("platform"),
		Country:   q.Get("country"),
		Premium:   q.Get("premium"),
	}
	if p.TimeRange == "" {
		p.TimeRange = "90d"
	}
	if p.Bucket == "" {
		p.Bucket = "weekly"
	}
	if err := validate.Struct(p); err != nil {
		return p, analytics.CohortOptions{}, fmt.Errorf("invalid cohort parameters: %s", validationDetail(err))
	}

	opts := analytics.CohortOptions{
		Days:        timeRangeDays[p.TimeRange],
		Granularity: analytics.CohortGranularity(p.Bucket),
		TimeRange:   p.TimeRange,
		Platform:    p.Platform,
		Country:     p.Country,
	}
	if p.Premium != "" {
		premium := p.Premium == "true"
		opts.Premium = &premium
	}
	return p, opts, nil
}

// dateRangeParams are the explicit ISO bounds of the error-event feed.
type dateRangeParams struct {
	From time.Time
	To   time.Time
}

// parseDateRangeParams reads dateFrom/dateTo as RFC3339 instants and
// requires from <= to.
func parseDateRangeParams(r *http.Request) (dateRangeParams, error) {
	q := r.URL.Query()

	from, err := time.Parse(time.RFC3339, q.Get("dateFrom"))
	if err != nil {
		return dateRangeParams{}, fmt.Errorf("dateFrom must be a RFC3339 timestamp")
	}
	to, err := time.Parse(time.RFC3339, q.Get("dateTo"))
	if err != nil {
		return dateRangeParams{}, fmt.Errorf("dateTo must be a RFC3339 timestamp")
	}
	if to.Before(from) {
		return dateRangeParams{}, fmt.Errorf("dateTo must not be before dateFrom")
	}
	return dateRangeParams{From: from, To: to}, nil
}

// validationDetail flattens a validator error into a short field list.
func validationDetail(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid value"
	}
	detail := ""
	for i, fe := range verrs {
		if i > 0 {
			detail += ", "
		}
		detail += fe.Field()
	}
	return detail
}

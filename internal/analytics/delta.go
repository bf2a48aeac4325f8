// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package analytics

import "github.com/stillpoint-app/insights/internal/models"

// Delta returns the percentage change from previous to current. By
// convention a jump from zero to any positive value is 100%, and zero to
// zero is 0%; the function never divides by zero.
func Delta(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - previous) / previous * 100
}

// WithDelta bundles a current and previous value with their Delta.
func WithDelta(current, previous float64) models.MetricWithDelta {
	return models.MetricWithDelta{
		Value:    current,
		Previous: previous,
		Delta:    Delta(current, previous),
	}
}

// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

// Package analytics derives decision-grade metrics from raw behavioral
// events: reconstructed usage sessions, engagement ratios, practice-day
// streaks and cohort retention curves.
//
// The aggregation functions in this package are pure: they take normalized
// events plus the relevant heuristics and return aggregates, holding no
// state between calls. Service wires them to the warehouse query client,
// fanning out the independent sub-queries of one response concurrently and
// joining all results before computing anything.
//
// Two distinct session-grouping strategies coexist on purpose and must not
// be unified:
//
//   - sessions.go groups practice events by a synthetic
//     (user, practice, 5-minute bucket) key, ignoring the warehouse session
//     ID except as a display label.
//   - engagement.go groups by the warehouse-native (session, user) pair
//     and trusts it.
//
// Each feeds a different metric family; merging them would silently change
// one family's semantics.
package analytics

// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package analytics

import (
	"github.com/stillpoint-app/insights/internal/models"
	"github.com/stillpoint-app/insights/internal/warehouse"
)

// Event queries issued by Service all select the same column tuple, in
// this order.
const (
	colTimestamp = iota
	colEvent
	colUserID
	colSessionID
	colProperties
	eventColumns
)

// NormalizeRow converts one raw warehouse row into a NormalizedEvent.
// The boundary fails closed: a row with a malformed timestamp, or without
// an event name or user ID, is dropped (ok=false) instead of letting
// loosely-typed data travel further in.
func NormalizeRow(row warehouse.Row) (models.NormalizedEvent, bool) {
	if len(row) < eventColumns {
		return models.NormalizedEvent{}, false
	}

	ts, ok := warehouse.Time(row[colTimestamp])
	if !ok {
		return models.NormalizedEvent{}, false
	}

	eventName := warehouse.String(row[colEvent])
	userID := warehouse.String(row[colUserID])
	if eventName == "" || userID == "" {
		return models.NormalizedEvent{}, false
	}

	return models.NormalizedEvent{
		Timestamp:  ts,
		EventName:  eventName,
		UserID:     userID,
		SessionID:  warehouse.String(row[colSessionID]),
		Properties: warehouse.StringMap(row[colProperties]),
	}, true
}

// NormalizeRows converts a raw result set, dropping malformed rows.
func NormalizeRows(rows []warehouse.Row) []models.NormalizedEvent {
	events := make([]models.NormalizedEvent, 0, len(rows))
	for _, row := range rows {
		if ev, ok := NormalizeRow(row); ok {
			events = append(events, ev)
		}
	}
	return events
}

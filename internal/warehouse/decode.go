// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package warehouse

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// String coerces a warehouse scalar to a string. Date-like objects become
// their ISO-8601 representation; anything unrecognized becomes "".
func String(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]interface{}:
		if ts, ok := dateObjectTime(t); ok {
			return ts.UTC().Format(time.RFC3339)
		}
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Float coerces a warehouse scalar to a float64. Strings go through a
// numeric parse with a 0 fallback.
func Float(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// timestampLayouts lists the textual timestamp formats the warehouse emits,
// tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999Z07:00",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time coerces a warehouse scalar to an instant. The second return value
// is false when no well-formed instant can be derived; callers drop the
// row rather than guessing.
func Time(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	case float64:
		// Epoch milliseconds.
		if t <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(t)).UTC(), true
	case map[string]interface{}:
		return dateObjectTime(t)
	default:
		return time.Time{}, false
	}
}

// dateObjectTime extracts an instant from a date-like object. The
// warehouse serializes datetime columns as {"value": "..."} or
// {"iso": "..."} depending on dialect version.
func dateObjectTime(obj map[string]interface{}) (time.Time, bool) {
	for _, key := range []string{"value", "iso", "date"} {
		if raw, ok := obj[key]; ok {
			if s, ok := raw.(string); ok {
				for _, layout := range timestampLayouts {
					if ts, err := time.Parse(layout, s); err == nil {
						return ts, true
					}
				}
			}
		}
	}
	return time.Time{}, false
}

// StringMap coerces a properties scalar to a flat string map. The
// warehouse returns properties either as a JSON object or as a serialized
// JSON string; nested values are flattened through String.
func StringMap(v interface{}) map[string]string {
	var obj map[string]interface{}
	switch t := v.(type) {
	case map[string]interface{}:
		obj = t
	case string:
		if t == "" {
			return map[string]string{}
		}
		if err := json.Unmarshal([]byte(t), &obj); err != nil {
			return map[string]string{}
		}
	default:
		return map[string]string{}
	}

	out := make(map[string]string, len(obj))
	for k, raw := range obj {
		out[k] = String(raw)
	}
	return out
}

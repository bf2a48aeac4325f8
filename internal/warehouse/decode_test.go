// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package warehouse

import (
	"testing"
	"time"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"string", "hello", "hello"},
		{"float", float64(42), "42"},
		{"fractional float", 3.5, "3.5"},
		{"bool", true, "true"},
		{"date object value key", map[string]interface{}{"value": "2026-07-15T10:00:00Z"}, "2026-07-15T10:00:00Z"},
		{"unrecognized object", map[string]interface{}{"foo": "bar"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := String(tt.in); got != tt.want {
				t.Errorf("String(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFloat(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
	}{
		{"float", 1.5, 1.5},
		{"numeric string", "2.25", 2.25},
		{"bad string", "n/a", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Float(tt.in); got != tt.want {
				t.Errorf("Float(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTime(t *testing.T) {
	want := time.Date(2026, 7, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   interface{}
		want time.Time
		ok   bool
	}{
		{"rfc3339", "2026-07-15T10:30:00Z", want, true},
		{"space separated", "2026-07-15 10:30:00", want, true},
		{"date only", "2026-07-15", time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), true},
		{"epoch millis", float64(want.UnixMilli()), want, true},
		{"date object", map[string]interface{}{"value": "2026-07-15T10:30:00Z"}, want, true},
		{"iso key variant", map[string]interface{}{"iso": "2026-07-15T10:30:00Z"}, want, true},
		{"garbage string", "later today", time.Time{}, false},
		{"zero epoch", float64(0), time.Time{}, false},
		{"nil", nil, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Time(tt.in)
			if ok != tt.ok {
				t.Fatalf("Time(%v) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Time(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStringMap(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		got := StringMap(map[string]interface{}{"a": "x", "n": float64(7), "b": true})
		if got["a"] != "x" || got["n"] != "7" || got["b"] != "true" {
			t.Errorf("StringMap = %v", got)
		}
	})

	t.Run("serialized json string", func(t *testing.T) {
		got := StringMap(`{"practice_id":"p1","completion_percentage":95}`)
		if got["practice_id"] != "p1" {
			t.Errorf("practice_id = %q", got["practice_id"])
		}
		if got["completion_percentage"] != "95" {
			t.Errorf("completion_percentage = %q", got["completion_percentage"])
		}
	})

	t.Run("invalid json string", func(t *testing.T) {
		if got := StringMap("{broken"); len(got) != 0 {
			t.Errorf("StringMap = %v, want empty", got)
		}
	})

	t.Run("nil", func(t *testing.T) {
		got := StringMap(nil)
		if got == nil || len(got) != 0 {
			t.Errorf("StringMap(nil) = %v, want empty non-nil map", got)
		}
	})
}

package core

import (
	"encoding/json"
	"testing"
)

func TestMonth_ClampDay(t *testing.T) {
	tests := []struct {
		name  string
		month Month
		day   int
		want  int
	}{
		{name: "day 31 in february", month: MonthOf(2025, 2), day: 31, want: 28},
		{name: "day 31 in leap february", month: MonthOf(2024, 2), day: 31, want: 29},
		{name: "day 31 in april", month: MonthOf(2025, 4), day: 31, want: 30},
		{name: "day 31 in january untouched", month: MonthOf(2025, 1), day: 31, want: 31},
		{name: "day 1 untouched", month: MonthOf(2025, 2), day: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.month.ClampDay(tt.day); got != tt.want {
				t.Errorf("ClampDay(%d) in %s = %d, want %d", tt.day, tt.month, got, tt.want)
			}
		})
	}
}

func TestMonth_LastDay(t *testing.T) {
	if got := MonthOf(2025, 12).LastDay(); got != 31 {
		t.Errorf("LastDay(2025-12) = %d, want 31", got)
	}
	if got := MonthOf(2024, 2).LastDay(); got != 29 {
		t.Errorf("LastDay(2024-02) = %d, want 29", got)
	}
}

func TestMonth_After(t *testing.T) {
	tests := []struct {
		name string
		a, b Month
		want bool
	}{
		{name: "later month same year", a: MonthOf(2025, 4), b: MonthOf(2025, 3), want: true},
		{name: "earlier month same year", a: MonthOf(2025, 2), b: MonthOf(2025, 3), want: false},
		{name: "same month", a: MonthOf(2025, 3), b: MonthOf(2025, 3), want: false},
		{name: "later year earlier month", a: MonthOf(2026, 1), b: MonthOf(2025, 12), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.After(tt.b); got != tt.want {
				t.Errorf("%s.After(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(2025, 3, 1)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-03-01"` {
		t.Errorf("marshalled date = %s, want \"2025-03-01\"", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("round trip changed date: %s vs %s", back, d)
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("not-a-date"); err == nil {
		t.Error("expected error for malformed date")
	}
	d, err := ParseDate("2025-02-28")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Day() != 28 || d.Month() != MonthOf(2025, 2) {
		t.Errorf("parsed %s, want 2025-02-28", d)
	}
}

func TestDate_Next(t *testing.T) {
	if got := NewDate(2024, 2, 28).Next(); got != NewDate(2024, 2, 29) {
		t.Errorf("Next(2024-02-28) = %s, want 2024-02-29", got)
	}
	if got := NewDate(2025, 12, 31).Next(); got != NewDate(2026, 1, 1) {
		t.Errorf("Next(2025-12-31) = %s, want 2026-01-01", got)
	}
}

package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	loc := time.UTC
	cases := []struct {
		in    string
		ok    bool
		year  int
		month time.Month
		day   int
		hour  int
	}{
		{"13-11-2025", true, 2025, time.November, 13, 0},
		{"13/11/25", true, 2025, time.November, 13, 0},
		{"01/04/2025", true, 2025, time.April, 1, 0},
		{"1/4/2025", true, 2025, time.April, 1, 0},
		{"13-11-2025 10:15", true, 2025, time.November, 13, 10},
		{"13/11/2025 23:59:59", true, 2025, time.November, 13, 23},
		{"2025-11-13", true, 2025, time.November, 13, 0},
		{"2025-11-13T08:30:00", true, 2025, time.November, 13, 8},
		{"2025-11-13T08:30:00Z", true, 2025, time.November, 13, 8},
		{"31/02/2025", false, 0, 0, 0, 0},
		{"13/13/2025", false, 0, 0, 0, 0},
		{"tomorrow", false, 0, 0, 0, 0},
		{"", false, 0, 0, 0, 0},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in, loc)
		if ok != tc.ok {
			t.Fatalf("%q: ok=%v want %v", tc.in, ok, tc.ok)
		}
		if !ok {
			continue
		}
		if got.Year() != tc.year || got.Month() != tc.month || got.Day() != tc.day || got.Hour() != tc.hour {
			t.Fatalf("%q: got %v", tc.in, got)
		}
	}
}

func TestRecordDateFallsBackToTimestamp(t *testing.T) {
	r := Record{FieldDate: "not a date", FieldTimestamp: "02/05/2025 09:00:00"}
	got, ok := RecordDate(r, time.UTC)
	if !ok || got.Month() != time.May || got.Day() != 2 {
		t.Fatalf("unexpected date %v ok=%v", got, ok)
	}
	if _, ok := RecordDate(Record{FieldAmount: "1"}, time.UTC); ok {
		t.Fatalf("record without dates must not parse")
	}
}

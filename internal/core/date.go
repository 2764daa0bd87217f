package core

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// 13/11/25, 13-11-2025, 13/11/2025 10:15, 13-11-2025 10:15:42
	dayFirstPattern = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4}|\d{2})(?:[ T,]+(\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)
	// 2025-11-13, 2025-11-13 10:15, 2025-11-13T10:15:42
	isoPattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:[ T](\d{1,2}):(\d{2})(?::(\d{2})(?:\.\d+)?)?)?$`)
)

// ParseDate reads the date formats found in the ledger sheets. Day-first
// forms are tried before ISO; two-digit years are taken as 20YY. Values
// without a zone are read in loc. ok is false when nothing matches or the
// calendar fields are out of range.
func ParseDate(s string, loc *time.Location) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	if m := dayFirstPattern.FindStringSubmatch(s); m != nil {
		year := atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		return build(year, atoi(m[2]), atoi(m[1]), m[4], m[5], m[6], loc)
	}
	if m := isoPattern.FindStringSubmatch(s); m != nil {
		return build(atoi(m[1]), atoi(m[2]), atoi(m[3]), m[4], m[5], m[6], loc)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), true
	}
	return time.Time{}, false
}

// RecordDate derives the date of r from "date", falling back to "time stamp".
func RecordDate(r Record, loc *time.Location) (time.Time, bool) {
	if t, ok := ParseDate(r.Get(FieldDate), loc); ok {
		return t, true
	}
	return ParseDate(r.Get(FieldTimestamp), loc)
}

func build(year, month, day int, hh, mm, ss string, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, false
	}
	hour, minute, second := atoi(hh), atoi(mm), atoi(ss)
	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, loc), true
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// atoi returns 0 for empty input; callers only pass regexp digit groups.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

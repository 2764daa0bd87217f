package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeQuery is the time selection exactly as received from a caller.
type TimeQuery struct {
	Start string
	End   string
	Month string
	Year  string
}

// HasRange reports whether start or end was supplied.
func (q TimeQuery) HasRange() bool {
	return strings.TrimSpace(q.Start) != "" || strings.TrimSpace(q.End) != ""
}

// Window is the effective time selection of a request. It is built once by
// ResolveWindow and never modified afterwards.
type Window struct {
	start time.Time
	end   time.Time
	month time.Month
	year  int
	loc   *time.Location
}

// ResolveWindow turns a raw query into the effective window. A start or end
// bound disables month and year entirely. With no fields at all the window
// is the calendar month of now. Calendar fields of records are read in the
// location of now.
func ResolveWindow(q TimeQuery, now time.Time) (Window, error) {
	loc := now.Location()
	w := Window{loc: loc}

	if q.HasRange() {
		if s := strings.TrimSpace(q.Start); s != "" {
			t, ok := ParseDate(s, loc)
			if !ok {
				return Window{}, NewValidationError("start", fmt.Sprintf("unrecognized date %q", s))
			}
			w.start = startOfDay(t)
		}
		if s := strings.TrimSpace(q.End); s != "" {
			t, ok := ParseDate(s, loc)
			if !ok {
				return Window{}, NewValidationError("end", fmt.Sprintf("unrecognized date %q", s))
			}
			w.end = startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		if !w.start.IsZero() && !w.end.IsZero() && w.start.After(w.end) {
			return Window{}, NewValidationError("start", "must not be after end")
		}
		return w, nil
	}

	month, year := strings.TrimSpace(q.Month), strings.TrimSpace(q.Year)
	if month == "" && year == "" {
		n := now.In(loc)
		w.month, w.year = n.Month(), n.Year()
		return w, nil
	}
	if month != "" {
		m, err := strconv.Atoi(month)
		if err != nil || m < 1 || m > 12 {
			return Window{}, NewValidationError("month", "must be a number between 1 and 12")
		}
		w.month = time.Month(m)
	}
	if year != "" {
		y, err := strconv.Atoi(year)
		if err != nil || y < 1900 || y > 9999 {
			return Window{}, NewValidationError("year", "must be a four-digit year")
		}
		w.year = y
	}
	return w, nil
}

// Start returns the inclusive lower bound, if any.
func (w Window) Start() (time.Time, bool) { return w.start, !w.start.IsZero() }

// End returns the inclusive upper bound (last instant of the end day), if any.
func (w Window) End() (time.Time, bool) { return w.end, !w.end.IsZero() }

// Month returns the selected month, or 0.
func (w Window) Month() time.Month { return w.month }

// Year returns the selected year, or 0.
func (w Window) Year() int { return w.year }

// Location is the zone used for record calendar fields.
func (w Window) Location() *time.Location {
	if w.loc == nil {
		return time.Local
	}
	return w.loc
}

// Contains reports whether t satisfies every bound of the window.
func (w Window) Contains(t time.Time) bool {
	if !w.start.IsZero() && t.Before(w.start) {
		return false
	}
	if !w.end.IsZero() && t.After(w.end) {
		return false
	}
	local := t.In(w.Location())
	if w.month != 0 && local.Month() != w.month {
		return false
	}
	if w.year != 0 && local.Year() != w.year {
		return false
	}
	return true
}

// Select keeps the records whose derived date lies in the window. Records
// without a parseable date are always dropped.
func (w Window) Select(records []Record) []Record {
	loc := w.Location()
	return Filter(records, func(r Record) bool {
		t, ok := RecordDate(r, loc)
		return ok && w.Contains(t)
	})
}

func (w Window) String() string {
	var parts []string
	if s, ok := w.Start(); ok {
		parts = append(parts, "start="+s.Format("2006-01-02"))
	}
	if e, ok := w.End(); ok {
		parts = append(parts, "end="+e.Format("2006-01-02"))
	}
	if w.month != 0 {
		parts = append(parts, fmt.Sprintf("month=%d", int(w.month)))
	}
	if w.year != 0 {
		parts = append(parts, fmt.Sprintf("year=%d", w.year))
	}
	return strings.Join(parts, " ")
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

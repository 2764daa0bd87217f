package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FiscalMonths lists the months of a fiscal year in display order.
var FiscalMonths = []time.Month{
	time.April, time.May, time.June, time.July, time.August, time.September,
	time.October, time.November, time.December, time.January, time.February, time.March,
}

// FiscalYear runs from 1 April of StartYear to 31 March of the following year.
type FiscalYear struct {
	StartYear int
}

// FiscalYearOf returns the fiscal year containing t.
func FiscalYearOf(t time.Time) FiscalYear {
	if t.Month() >= time.April {
		return FiscalYear{StartYear: t.Year()}
	}
	return FiscalYear{StartYear: t.Year() - 1}
}

// ResolveFiscalYear infers the fiscal year of a comparison request. The
// reference date is start, then end, then month/year (April when only the
// year is given), then now.
func ResolveFiscalYear(q TimeQuery, now time.Time) (FiscalYear, error) {
	loc := now.Location()
	for _, f := range []struct{ name, value string }{{"start", q.Start}, {"end", q.End}} {
		if s := strings.TrimSpace(f.value); s != "" {
			t, ok := ParseDate(s, loc)
			if !ok {
				return FiscalYear{}, NewValidationError(f.name, fmt.Sprintf("unrecognized date %q", s))
			}
			return FiscalYearOf(t), nil
		}
	}
	if y := strings.TrimSpace(q.Year); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil || year < 1900 || year > 9999 {
			return FiscalYear{}, NewValidationError("year", "must be a four-digit year")
		}
		month := time.April
		if m := strings.TrimSpace(q.Month); m != "" {
			n, err := strconv.Atoi(m)
			if err != nil || n < 1 || n > 12 {
				return FiscalYear{}, NewValidationError("month", "must be a number between 1 and 12")
			}
			month = time.Month(n)
		}
		return FiscalYearOf(time.Date(year, month, 1, 0, 0, 0, 0, loc)), nil
	}
	return FiscalYearOf(now), nil
}

// Contains reports whether t falls inside the fiscal year.
func (fy FiscalYear) Contains(t time.Time) bool {
	return FiscalYearOf(t).StartYear == fy.StartYear
}

// Label formats the year as "2025-26".
func (fy FiscalYear) Label() string {
	return fmt.Sprintf("%d-%02d", fy.StartYear, (fy.StartYear+1)%100)
}

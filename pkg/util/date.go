package util

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the calendar date format accepted by every entry point.
const DateLayout = "2006-01-02"

// ParseTime tries RFC3339, a plain calendar date and unix seconds. Returns
// (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange resolves a start/end pair of calendar dates. An empty end means
// today; an empty start means lookbackDays before end. Both ends are inclusive.
func DateRange(start, end string, now time.Time, lookbackDays int) (time.Time, time.Time, error) {
	to := Day(now)
	if end != "" {
		t, err := time.Parse(DateLayout, end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end date %q: want YYYY-MM-DD", end)
		}
		to = t
	}
	from := to.AddDate(0, 0, -lookbackDays)
	if start != "" {
		t, err := time.Parse(DateLayout, start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start date %q: want YYYY-MM-DD", start)
		}
		from = t
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date %s must be before end date %s",
			from.Format(DateLayout), to.Format(DateLayout))
	}
	return from, to, nil
}

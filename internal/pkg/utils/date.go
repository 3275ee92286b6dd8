package utils

import (
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
	ClockLayout = "03:04 PM"
)

// IsDifferentDay reports whether the two instants fall on different calendar days in loc.
// Any differing field among year, month and day counts.
func IsDifferentDay(reference, candidate time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ry, rm, rd := reference.In(loc).Date()
	cy, cm, cd := candidate.In(loc).Date()
	return ry != cy || rm != cm || rd != cd
}

// FormatClock renders the 12-hour local time stamped on check-in and check-out.
func FormatClock(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(ClockLayout)
}

// Layouts the history API has been seen to send. Zoned layouts come first.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var localLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
}

// ParseDate parses s in any accepted layout. Zoned timestamps are moved into loc
// before the calendar date is taken.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.In(loc).Date()
			return time.Date(y, m, d, 0, 0, 0, 0, loc), true
		}
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, loc), true
		}
	}

	return time.Time{}, false
}

// NormalizeDate returns the canonical YYYY-MM-DD key for s.
func NormalizeDate(s string, loc *time.Location) (string, bool) {
	t, ok := ParseDate(s, loc)
	if !ok {
		return "", false
	}
	return t.Format(DateLayout), true
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

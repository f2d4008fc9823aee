// Package timeutil provides calendar-day arithmetic in a reference timezone.
// The popularity jobs are defined in terms of calendar dates ("yesterday's
// players", "today's score"), so all day boundaries must be computed in the
// deployment's reference timezone, not in UTC or server-local time.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// DateLayout is the canonical date format used for cache keys and queries.
const DateLayout = "2006-01-02"

// StartOfDay returns the start of the day (00:00:00) containing t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the exclusive end of the day containing t in loc,
// i.e. the start of the following day. Using a half-open interval
// [StartOfDay, EndOfDay) avoids the 23:59:59.999... fencepost.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1)
}

// Yesterday returns the start of the calendar day before the one containing t.
func Yesterday(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, -1)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return StartOfDay(a, loc).Equal(StartOfDay(b, loc))
}

// FormatDate formats t as a calendar date in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// NextTimeOfDay returns the next occurrence of hour:minute in loc strictly
// after t. Used by daily schedules.
func NextTimeOfDay(t time.Time, hour, minute int, loc *time.Location) time.Time {
	local := t.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

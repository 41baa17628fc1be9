package utils

import (
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 calendar date layout used for keys, queries and JSON.
const DateFormat = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// NormalizeDate drops the time-of-day and location, returning midnight UTC
// of the same calendar day.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a normalized date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// FirstOfMonth returns the first calendar day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of calendar days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsMonthEnd reports whether t is the last calendar day of its month.
func IsMonthEnd(t time.Time) bool {
	return t.Day() == DaysInMonth(t)
}

// DaysBetween returns the whole calendar days from a to b (negative if b is before a).
// It works on Unix seconds rather than time.Duration, which overflows past ~292 years.
func DaysBetween(a, b time.Time) int {
	return int((NormalizeDate(b).Unix() - NormalizeDate(a).Unix()) / secondsPerDay)
}

// DaysInclusive counts calendar days from start to end, both included.
func DaysInclusive(start, end time.Time) int {
	return DaysBetween(start, end) + 1
}

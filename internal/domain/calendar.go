package domain

import (
	"fmt"
	"time"
)

// WeekID returns the ISO-8601 week bucket for a timestamp, e.g. "2026-W05".
// The ISO year can differ from the calendar year around January 1st.
func WeekID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// MonthID returns the calendar month bucket for a timestamp, e.g. "2026-08".
func MonthID(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// DateOnly truncates a timestamp to midnight of its calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the whole-day difference between two timestamps,
// ignoring time of day. Positive when b falls on a later calendar day.
func DaysBetween(a, b time.Time) int {
	from := DateOnly(a.UTC())
	to := DateOnly(b.UTC())
	return int(to.Sub(from).Hours() / 24)
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekID(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{date: time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC), want: "2026-W36"},
		{date: time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), want: "2026-W02"},
		// January 1st 2005 was a Saturday and belongs to ISO week 53 of 2004.
		{date: time.Date(2005, time.January, 1, 12, 0, 0, 0, time.UTC), want: "2004-W53"},
		// December 29th 2025 is a Monday and opens ISO week 1 of 2026.
		{date: time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC), want: "2026-W01"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, WeekID(tc.date), "date=%s", tc.date)
	}
}

func TestWeekIDStableWithinWeek(t *testing.T) {
	monday := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, time.March, 8, 23, 59, 0, 0, time.UTC)
	require.Equal(t, WeekID(monday), WeekID(sunday))
}

func TestMonthID(t *testing.T) {
	require.Equal(t, "2026-08", MonthID(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "2026-12", MonthID(time.Date(2026, time.December, 31, 23, 0, 0, 0, time.UTC)))
	require.Equal(t, "0999-01", MonthID(time.Date(999, time.January, 15, 0, 0, 0, 0, time.UTC)))
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2026, time.August, 30, 23, 50, 0, 0, time.UTC)

	require.Equal(t, 0, DaysBetween(base, base.Add(5*time.Minute)))
	// Ten minutes of wall clock, but the calendar day flips.
	require.Equal(t, 1, DaysBetween(base, base.Add(15*time.Minute)))
	require.Equal(t, 3, DaysBetween(base, base.AddDate(0, 0, 3)))
	require.Equal(t, -1, DaysBetween(base, base.AddDate(0, 0, -1)))
}

func TestDateOnly(t *testing.T) {
	stamped := time.Date(2026, time.August, 31, 17, 45, 12, 999, time.UTC)
	truncated := DateOnly(stamped)
	require.Equal(t, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC), truncated)
}

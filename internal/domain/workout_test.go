package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.August, 31, 14, 30, 0, 0, time.UTC)

func sampleLog(calories int, exercises ...Exercise) WorkoutLog {
	return WorkoutLog{
		ID:           "log-1",
		UserID:       "user-1",
		Date:         testNow,
		WorkoutTitle: "Morning Session",
		Duration:     45,
		Calories:     calories,
		Exercises:    exercises,
	}
}

func daysAgo(n int) *time.Time {
	d := DateOnly(testNow.UTC().AddDate(0, 0, -n))
	return &d
}

func TestPushupVolume(t *testing.T) {
	exercises := []Exercise{
		{Name: "Push-Up", Sets: 3, Reps: 15},
		{Name: "diamond push up", Sets: 2, Reps: 10},
		{Name: "Pull-Up", Sets: 4, Reps: 8},
	}
	require.Equal(t, 65, PushupVolume(exercises))
	require.Equal(t, 0, PushupVolume(nil))
}

func TestNewProfileFromWorkout(t *testing.T) {
	log := sampleLog(320, Exercise{Name: "Squat", Sets: 5, Reps: 5})

	profile, badges := NewProfileFromWorkout("user-1", log, testNow)

	require.Equal(t, "user-1", profile.ID)
	require.Equal(t, XPPerWorkout, profile.XP)
	require.Equal(t, 1, profile.Streak)
	require.Equal(t, DateOnly(testNow), *profile.LastWorkoutDate)
	require.Equal(t, 320, profile.TotalCaloriesThisWeek)
	require.Equal(t, 1, profile.TotalWorkoutsThisWeek)
	require.Equal(t, WeekID(testNow), profile.LastActivityWeek)
	require.Equal(t, 320, profile.TotalCaloriesThisMonth)
	require.Equal(t, 1, profile.TotalWorkoutsThisMonth)
	require.Equal(t, MonthID(testNow), profile.LastActivityMonth)
	require.Equal(t, []Badge{BadgeFirstWorkout}, badges)
	require.Equal(t, badges, profile.UnlockedBadges)
}

func TestNewProfileSeedsPushupPro(t *testing.T) {
	log := sampleLog(200, Exercise{Name: "Push-Up", Sets: 6, Reps: 20})

	profile, badges := NewProfileFromWorkout("user-1", log, testNow)

	require.Equal(t, 120, profile.CumulativePushups)
	require.ElementsMatch(t, []Badge{BadgeFirstWorkout, BadgePushupPro}, badges)
}

func TestApplyWorkoutExtendsStreak(t *testing.T) {
	profile := UserProfile{
		ID:              "user-1",
		XP:              75,
		Streak:          3,
		LastWorkoutDate: daysAgo(1),
	}

	update := ApplyWorkoutToProfile(profile, 3, sampleLog(100), testNow)

	require.Equal(t, XPPerWorkout, update.XPDelta)
	require.Equal(t, 4, update.Streak)
	require.Equal(t, DateOnly(testNow), update.LastWorkoutDate)
}

func TestApplyWorkoutSameDayKeepsStreak(t *testing.T) {
	profile := UserProfile{Streak: 5, LastWorkoutDate: daysAgo(0)}

	update := ApplyWorkoutToProfile(profile, 8, sampleLog(100), testNow)

	require.Equal(t, 5, update.Streak)
}

func TestApplyWorkoutResetsStreakAfterGap(t *testing.T) {
	profile := UserProfile{Streak: 12, LastWorkoutDate: daysAgo(4)}

	update := ApplyWorkoutToProfile(profile, 20, sampleLog(100), testNow)

	require.Equal(t, 1, update.Streak)
}

func TestApplyWorkoutAccumulatesWithinBucket(t *testing.T) {
	profile := UserProfile{
		LastWorkoutDate:        daysAgo(1),
		TotalCaloriesThisWeek:  500,
		TotalWorkoutsThisWeek:  2,
		LastActivityWeek:       WeekID(testNow),
		TotalCaloriesThisMonth: 1800,
		TotalWorkoutsThisMonth: 9,
		LastActivityMonth:      MonthID(testNow),
	}

	update := ApplyWorkoutToProfile(profile, 9, sampleLog(250), testNow)

	require.Equal(t, 750, update.TotalCaloriesThisWeek)
	require.Equal(t, 3, update.TotalWorkoutsThisWeek)
	require.Equal(t, 2050, update.TotalCaloriesThisMonth)
	require.Equal(t, 10, update.TotalWorkoutsThisMonth)
}

func TestApplyWorkoutResetsStaleBuckets(t *testing.T) {
	profile := UserProfile{
		LastWorkoutDate:        daysAgo(30),
		TotalCaloriesThisWeek:  900,
		TotalWorkoutsThisWeek:  4,
		LastActivityWeek:       "2026-W30",
		TotalCaloriesThisMonth: 3000,
		TotalWorkoutsThisMonth: 14,
		LastActivityMonth:      "2026-07",
	}

	update := ApplyWorkoutToProfile(profile, 18, sampleLog(250), testNow)

	require.Equal(t, 250, update.TotalCaloriesThisWeek)
	require.Equal(t, 1, update.TotalWorkoutsThisWeek)
	require.Equal(t, WeekID(testNow), update.LastActivityWeek)
	require.Equal(t, 250, update.TotalCaloriesThisMonth)
	require.Equal(t, 1, update.TotalWorkoutsThisMonth)
	require.Equal(t, MonthID(testNow), update.LastActivityMonth)
}

func TestApplyWorkoutAwardsFirstWorkoutWhenNoPriorLogs(t *testing.T) {
	// Profile exists from social activity but no workout was ever logged.
	profile := UserProfile{ID: "user-1", PostCount: 3}

	update := ApplyWorkoutToProfile(profile, 0, sampleLog(100), testNow)

	require.Contains(t, update.NewBadges, BadgeFirstWorkout)
	require.Equal(t, 1, update.Streak)
}

func TestApplyWorkoutAwardsStreakBadgeOnce(t *testing.T) {
	profile := UserProfile{Streak: 6, LastWorkoutDate: daysAgo(1)}

	update := ApplyWorkoutToProfile(profile, 20, sampleLog(100), testNow)
	require.Equal(t, 7, update.Streak)
	require.Contains(t, update.NewBadges, BadgeSevenDayStreak)

	profile.Streak = 7
	profile.UnlockedBadges = []Badge{BadgeSevenDayStreak}
	update = ApplyWorkoutToProfile(profile, 21, sampleLog(100), testNow)
	require.NotContains(t, update.NewBadges, BadgeSevenDayStreak)
}

func TestApplyWorkoutAwardsPushupProAtThreshold(t *testing.T) {
	profile := UserProfile{
		LastWorkoutDate:   daysAgo(1),
		CumulativePushups: 90,
	}

	log := sampleLog(100, Exercise{Name: "Push-Up", Sets: 2, Reps: 5})
	update := ApplyWorkoutToProfile(profile, 5, log, testNow)

	require.Equal(t, 100, update.CumulativePushups)
	require.Contains(t, update.NewBadges, BadgePushupPro)

	profile.CumulativePushups = 100
	profile.UnlockedBadges = []Badge{BadgePushupPro}
	update = ApplyWorkoutToProfile(profile, 6, log, testNow)
	require.NotContains(t, update.NewBadges, BadgePushupPro)
}

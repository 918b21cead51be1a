package domain

import "time"

// ProfileUpdate is the delta the logging transaction applies to an
// existing profile. XPDelta is applied as an atomic increment by the
// store; every other field is an absolute value computed under the
// transaction's snapshot. NewBadges contains only badges the profile
// does not already hold.
type ProfileUpdate struct {
	XPDelta                int
	Streak                 int
	LastWorkoutDate        time.Time
	TotalCaloriesThisWeek  int
	TotalWorkoutsThisWeek  int
	LastActivityWeek       string
	TotalCaloriesThisMonth int
	TotalWorkoutsThisMonth int
	LastActivityMonth      string
	CumulativePushups      int
	NewBadges              []Badge
}

// NewProfileFromWorkout synthesizes the profile for a user whose very
// first interaction with the system is this workout log. Returns the
// profile and the badges seeded into it.
func NewProfileFromWorkout(userID string, log WorkoutLog, now time.Time) (UserProfile, []Badge) {
	pushups := PushupVolume(log.Exercises)

	badges := []Badge{BadgeFirstWorkout}
	if pushups >= PushupProVolume {
		badges = append(badges, BadgePushupPro)
	}

	today := DateOnly(now.UTC())
	profile := UserProfile{
		ID:                     userID,
		DisplayName:            "New User",
		XP:                     XPPerWorkout,
		Streak:                 1,
		LastWorkoutDate:        &today,
		TotalCaloriesThisWeek:  log.Calories,
		TotalWorkoutsThisWeek:  1,
		LastActivityWeek:       WeekID(now),
		TotalCaloriesThisMonth: log.Calories,
		TotalWorkoutsThisMonth: 1,
		LastActivityMonth:      MonthID(now),
		CumulativePushups:      pushups,
		UnlockedBadges:         badges,
	}
	return profile, badges
}

// ApplyWorkoutToProfile computes the progression delta for a new log
// against an existing profile. priorLogCount is the number of logs the
// user had before this one, read under the same snapshot. Pure: all
// temporal decisions derive from now.
func ApplyWorkoutToProfile(profile UserProfile, priorLogCount int, log WorkoutLog, now time.Time) ProfileUpdate {
	update := ProfileUpdate{
		XPDelta:         XPPerWorkout,
		LastWorkoutDate: DateOnly(now.UTC()),
	}

	if priorLogCount == 0 && !profile.HasBadge(BadgeFirstWorkout) {
		update.NewBadges = append(update.NewBadges, BadgeFirstWorkout)
	}

	update.Streak = nextStreak(profile, now)
	if update.Streak >= StreakBadgeDays && !profile.HasBadge(BadgeSevenDayStreak) {
		update.NewBadges = append(update.NewBadges, BadgeSevenDayStreak)
	}

	week := WeekID(now)
	if profile.LastActivityWeek == week {
		update.TotalCaloriesThisWeek = profile.TotalCaloriesThisWeek + log.Calories
		update.TotalWorkoutsThisWeek = profile.TotalWorkoutsThisWeek + 1
	} else {
		update.TotalCaloriesThisWeek = log.Calories
		update.TotalWorkoutsThisWeek = 1
	}
	update.LastActivityWeek = week

	month := MonthID(now)
	if profile.LastActivityMonth == month {
		update.TotalCaloriesThisMonth = profile.TotalCaloriesThisMonth + log.Calories
		update.TotalWorkoutsThisMonth = profile.TotalWorkoutsThisMonth + 1
	} else {
		update.TotalCaloriesThisMonth = log.Calories
		update.TotalWorkoutsThisMonth = 1
	}
	update.LastActivityMonth = month

	update.CumulativePushups = profile.CumulativePushups + PushupVolume(log.Exercises)
	if update.CumulativePushups >= PushupProVolume && !profile.HasBadge(BadgePushupPro) {
		update.NewBadges = append(update.NewBadges, BadgePushupPro)
	}

	return update
}

// nextStreak applies the consecutive-day rules. A gap of exactly one
// calendar day extends the streak, a larger gap resets it, and a second
// log on the same calendar day leaves the streak untouched.
func nextStreak(profile UserProfile, now time.Time) int {
	if profile.LastWorkoutDate == nil {
		return 1
	}

	switch gap := DaysBetween(*profile.LastWorkoutDate, now); {
	case gap == 0:
		return profile.Streak
	case gap == 1:
		return profile.Streak + 1
	default:
		return 1
	}
}

package domain

import (
	"strings"
	"time"
)

// UserProfile is the per-user progression document. It is only ever
// mutated through the transactional operations on Store; rollup counters
// are meaningful only for the bucket named by their paired LastActivity*
// field.
type UserProfile struct {
	ID                     string
	DisplayName            string
	PhotoURL               string
	XP                     int
	Streak                 int
	LastWorkoutDate        *time.Time
	TotalCaloriesThisWeek  int
	TotalWorkoutsThisWeek  int
	LastActivityWeek       string
	TotalCaloriesThisMonth int
	TotalWorkoutsThisMonth int
	LastActivityMonth      string
	CumulativePushups      int
	UnlockedBadges         []Badge
	PostCount              int
	JoinedChallenges       []string
	JoinedGroups           []string
}

// HasBadge reports whether the profile already holds the badge.
func (p *UserProfile) HasBadge(b Badge) bool {
	for _, held := range p.UnlockedBadges {
		if held == b {
			return true
		}
	}
	return false
}

// Difficulty is the optional post-hoc rating a user attaches to a log.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
)

// Valid reports whether the rating is one of the accepted values.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyModerate, DifficultyHard:
		return true
	}
	return false
}

// Exercise is one entry in a workout log.
type Exercise struct {
	Name   string
	Sets   int
	Reps   int
	Weight float64
}

// WorkoutLog is a user's record of one completed workout. It is created
// once inside the logging transaction and immutable afterwards, except
// for the later-attached difficulty rating.
type WorkoutLog struct {
	ID               string
	UserID           string
	Date             time.Time
	WorkoutTitle     string
	Duration         int
	Calories         int
	Exercises        []Exercise
	DifficultyRating Difficulty
}

// PushupVolume sums sets*reps across exercises whose name loosely matches
// a push-up variant. The match is substring and case-insensitive on
// purpose, so "Push-up Variation" and "Diamond Push Up" both count.
func PushupVolume(exercises []Exercise) int {
	total := 0
	for _, ex := range exercises {
		name := strings.ToLower(ex.Name)
		if strings.Contains(name, "push-up") || strings.Contains(name, "push up") {
			total += ex.Sets * ex.Reps
		}
	}
	return total
}

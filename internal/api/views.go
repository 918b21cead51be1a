package api

import (
	"errors"
	"strings"
	"time"

	"github.com/Z-testacc/ActiLeap/internal/domain"
	"github.com/Z-testacc/ActiLeap/internal/insights"
	"github.com/Z-testacc/ActiLeap/internal/leaderboard"
)

// ExercisePayload is one exercise entry in a workout submission.
type ExercisePayload struct {
	Name   string  `json:"name"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// LogWorkoutRequest is the payload for POST /v1/workouts.
type LogWorkoutRequest struct {
	WorkoutTitle     string            `json:"workout_title"`
	DurationMin      int               `json:"duration_min"`
	Calories         int               `json:"calories"`
	Exercises        []ExercisePayload `json:"exercises"`
	DifficultyRating string            `json:"difficulty_rating"`
}

// Validate ensures request correctness.
func (r LogWorkoutRequest) Validate() error {
	if strings.TrimSpace(r.WorkoutTitle) == "" {
		return errors.New("workout_title is required")
	}
	if r.DurationMin <= 0 {
		return errors.New("duration_min must be > 0")
	}
	if r.Calories < 0 {
		return errors.New("calories must be >= 0")
	}
	for _, ex := range r.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return errors.New("exercise name is required")
		}
		if ex.Sets < 0 || ex.Reps < 0 {
			return errors.New("exercise sets and reps must be >= 0")
		}
	}
	if r.DifficultyRating != "" && !domain.Difficulty(r.DifficultyRating).Valid() {
		return errors.New("difficulty_rating must be easy, moderate, or hard")
	}
	return nil
}

// LogWorkoutResponse describes the response body for a submission.
// Persisted false means the write failed and was reported internally;
// clients treat the log as possibly absent.
type LogWorkoutResponse struct {
	LogID          string   `json:"log_id,omitempty"`
	UnlockedBadges []string `json:"unlocked_badges"`
	Persisted      bool     `json:"persisted"`
}

// UpdateProfileRequest is the payload for PUT /v1/profile. Absent
// fields are left unchanged.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	PhotoURL    *string `json:"photo_url"`
}

// Validate ensures request correctness.
func (r UpdateProfileRequest) Validate() error {
	if r.DisplayName == nil && r.PhotoURL == nil {
		return errors.New("at least one of display_name or photo_url is required")
	}
	if r.DisplayName != nil && strings.TrimSpace(*r.DisplayName) == "" {
		return errors.New("display_name must not be empty")
	}
	return nil
}

// RateWorkoutRequest is the payload for POST /v1/workouts/{id}/feedback.
type RateWorkoutRequest struct {
	DifficultyRating string `json:"difficulty_rating"`
}

// WorkoutLogView exposes one stored workout log.
type WorkoutLogView struct {
	LogID            string            `json:"log_id"`
	Date             time.Time         `json:"date"`
	WorkoutTitle     string            `json:"workout_title"`
	DurationMin      int               `json:"duration_min"`
	Calories         int               `json:"calories"`
	Exercises        []ExercisePayload `json:"exercises"`
	DifficultyRating string            `json:"difficulty_rating,omitempty"`
}

// ListWorkoutsResponse packages list results.
type ListWorkoutsResponse struct {
	Items      []WorkoutLogView `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// ProfileResponse couples stored profile fields with derived level state.
type ProfileResponse struct {
	UserID             string     `json:"user_id"`
	DisplayName        string     `json:"display_name"`
	PhotoURL           string     `json:"photo_url,omitempty"`
	XP                 int        `json:"xp"`
	Level              int        `json:"level"`
	CurrentLevelXP     int        `json:"current_level_xp"`
	NextLevelXP        int        `json:"next_level_xp"`
	ProgressPercentage float64    `json:"progress_percentage"`
	Streak             int        `json:"streak"`
	LastWorkoutDate    *time.Time `json:"last_workout_date,omitempty"`
	WeeklyCalories     int        `json:"weekly_calories"`
	WeeklyWorkouts     int        `json:"weekly_workouts"`
	LastActivityWeek   string     `json:"last_activity_week,omitempty"`
	MonthlyCalories    int        `json:"monthly_calories"`
	MonthlyWorkouts    int        `json:"monthly_workouts"`
	LastActivityMonth  string     `json:"last_activity_month,omitempty"`
	CumulativePushups  int        `json:"cumulative_pushups"`
	UnlockedBadges     []string   `json:"unlocked_badges"`
	JoinedChallenges   []string   `json:"joined_challenges"`
	JoinedGroups       []string   `json:"joined_groups"`
}

// LeaderboardResponse lists ranking entries best first.
type LeaderboardResponse struct {
	Entries []leaderboard.Entry `json:"entries"`
}

// InsightsResponse carries generated workout recommendations.
type InsightsResponse struct {
	Insights []insights.Insight `json:"insights"`
}

func toExercises(payloads []ExercisePayload) []domain.Exercise {
	out := make([]domain.Exercise, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, domain.Exercise(p))
	}
	return out
}

func toWorkoutLogView(log domain.WorkoutLog) WorkoutLogView {
	exercises := make([]ExercisePayload, 0, len(log.Exercises))
	for _, ex := range log.Exercises {
		exercises = append(exercises, ExercisePayload(ex))
	}
	return WorkoutLogView{
		LogID:            log.ID,
		Date:             log.Date,
		WorkoutTitle:     log.WorkoutTitle,
		DurationMin:      log.Duration,
		Calories:         log.Calories,
		Exercises:        exercises,
		DifficultyRating: string(log.DifficultyRating),
	}
}

func toProfileView(view domain.ProfileView) ProfileResponse {
	p := view.Profile
	return ProfileResponse{
		UserID:             p.ID,
		DisplayName:        p.DisplayName,
		PhotoURL:           p.PhotoURL,
		XP:                 p.XP,
		Level:              view.Progress.CurrentLevel,
		CurrentLevelXP:     view.Progress.CurrentLevelXP,
		NextLevelXP:        view.Progress.NextLevelXP,
		ProgressPercentage: view.Progress.ProgressPercentage,
		Streak:             p.Streak,
		LastWorkoutDate:    p.LastWorkoutDate,
		WeeklyCalories:     p.TotalCaloriesThisWeek,
		WeeklyWorkouts:     p.TotalWorkoutsThisWeek,
		LastActivityWeek:   p.LastActivityWeek,
		MonthlyCalories:    p.TotalCaloriesThisMonth,
		MonthlyWorkouts:    p.TotalWorkoutsThisMonth,
		LastActivityMonth:  p.LastActivityMonth,
		CumulativePushups:  p.CumulativePushups,
		UnlockedBadges:     badgeNames(p.UnlockedBadges),
		JoinedChallenges:   emptyIfNil(p.JoinedChallenges),
		JoinedGroups:       emptyIfNil(p.JoinedGroups),
	}
}

func badgeNames(badges []domain.Badge) []string {
	out := make([]string, 0, len(badges))
	for _, b := range badges {
		out = append(out, string(b))
	}
	return out
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

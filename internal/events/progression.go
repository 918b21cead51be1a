// Package events defines the progression event payloads published
// through the outbox.
package events

import "time"

// WorkoutLogged is emitted when a workout log commits.
type WorkoutLogged struct {
	LogID        string    `json:"log_id"`
	UserID       string    `json:"user_id"`
	WorkoutTitle string    `json:"workout_title"`
	Duration     int       `json:"duration_min"`
	Calories     int       `json:"calories"`
	LoggedAt     time.Time `json:"logged_at"`
}

// BadgeUnlocked is emitted once per badge that newly unlocked in a
// committing transaction. Unlocks are idempotent upstream, so consumers
// never see the same badge twice for a user.
type BadgeUnlocked struct {
	UserID     string    `json:"user_id"`
	Badge      string    `json:"badge"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// ChallengeToggled is emitted when a user joins or leaves a challenge.
type ChallengeToggled struct {
	UserID      string    `json:"user_id"`
	ChallengeID string    `json:"challenge_id"`
	Joined      bool      `json:"joined"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PostCreated is emitted when a community post commits.
type PostCreated struct {
	PostID     string    `json:"post_id"`
	AuthorID   string    `json:"author_id"`
	Category   string    `json:"category"`
	OccurredAt time.Time `json:"occurred_at"`
}

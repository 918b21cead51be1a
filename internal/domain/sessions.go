package domain

import "time"

// SessionStatus tracks the lifecycle of a group workout session.
type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionEnded  SessionStatus = "ended"
)

// SessionParticipant is one member of a live group workout session.
// Display fields are denormalized so the session roster renders without
// profile lookups.
type SessionParticipant struct {
	UserID      string
	DisplayName string
	PhotoURL    string
}

// WorkoutSession is a live group workout hosted by one user. The host
// is always the first participant; the participant set is append-only
// while the session is active.
type WorkoutSession struct {
	ID           string
	HostID       string
	HostName     string
	HostPhotoURL string
	WorkoutTitle string
	StartTime    time.Time
	Status       SessionStatus
	Participants []SessionParticipant
}

// HasParticipant reports whether the user already joined the session.
func (s *WorkoutSession) HasParticipant(userID string) bool {
	for _, p := range s.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

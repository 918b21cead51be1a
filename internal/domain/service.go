// Package domain holds the progression engine: the workout logging
// transaction, badge rules, streak and rollup arithmetic, and the
// social aggregation operations built on the same transactional store.
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Z-testacc/ActiLeap/internal/failure"
)

var (
	// ErrMissingUserID is a caller contract violation raised before any
	// store access is attempted.
	ErrMissingUserID = errors.New("user id is required")
	// ErrProfileNotFound is returned when a user has no progression profile.
	ErrProfileNotFound = errors.New("user profile not found")
	// ErrPostNotFound is returned when a post cannot be located.
	ErrPostNotFound = errors.New("post not found")
	// ErrChallengeNotFound is returned when a challenge cannot be located.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrGroupNotFound is returned when a group cannot be located.
	ErrGroupNotFound = errors.New("group not found")
	// ErrLogNotFound is returned when a workout log cannot be located.
	ErrLogNotFound = errors.New("workout log not found")
	// ErrSessionNotFound is returned when a group workout session cannot
	// be located.
	ErrSessionNotFound = errors.New("workout session not found")
	// ErrInvalidRating rejects difficulty values outside the accepted set.
	ErrInvalidRating = errors.New("invalid difficulty rating")
	// ErrCorruptRecord marks rows that failed to decode into their typed
	// representation at the store boundary.
	ErrCorruptRecord = errors.New("corrupt stored record")
)

// Cursor models the pagination token for workout log listings.
type Cursor struct {
	Date time.Time
	ID   string
}

// Store captures the transactional persistence operations the engine
// relies on. Every method that touches more than one row commits all of
// its writes atomically or none of them.
type Store interface {
	// SubmitWorkout persists the log and recomputes the owner's profile
	// in one transaction, returning badges that newly unlocked.
	SubmitWorkout(ctx context.Context, log WorkoutLog) ([]Badge, error)
	WorkoutLogs(ctx context.Context, userID string, cursor *Cursor, limit int) ([]WorkoutLog, *Cursor, error)
	RateWorkout(ctx context.Context, userID, logID string, rating Difficulty) error
	Profile(ctx context.Context, userID string) (*UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, edits ProfileEdits) error

	CreatePost(ctx context.Context, post Post) (*Badge, error)
	DeletePost(ctx context.Context, postID string) error
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	AddComment(ctx context.Context, comment Comment) error
	DeleteComment(ctx context.Context, postID, commentID string) error
	Posts(ctx context.Context, limit int) ([]Post, error)

	CreateChallenge(ctx context.Context, challenge Challenge) error
	ToggleChallenge(ctx context.Context, userID, challengeID string) (ChallengeToggle, error)
	Challenges(ctx context.Context) ([]Challenge, error)

	ToggleGroup(ctx context.Context, userID, groupID string) (bool, error)
	Groups(ctx context.Context) ([]Group, error)

	CreateSession(ctx context.Context, session WorkoutSession) error
	JoinSession(ctx context.Context, sessionID string, participant SessionParticipant) error
	Sessions(ctx context.Context) ([]WorkoutSession, error)
}

// RankUpdater receives XP awards for the leaderboard read model.
// Updates are best-effort and happen after the commit.
type RankUpdater interface {
	RecordXP(ctx context.Context, userID string, delta int) error
}

// Service orchestrates progression and social workflows. Store failures
// for fire-and-forget flows are converted into failure events on the
// injected reporter instead of propagating to the caller.
type Service struct {
	store    Store
	reporter failure.Reporter
	ranks    RankUpdater
	logger   *zap.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger overrides the no-op default logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithRankUpdater attaches a leaderboard sink for XP awards.
func WithRankUpdater(r RankUpdater) Option {
	return func(s *Service) { s.ranks = r }
}

// NewService constructs a Service.
func NewService(store Store, reporter failure.Reporter, opts ...Option) *Service {
	s := &Service{
		store:    store,
		reporter: reporter,
		logger:   zap.NewNop(),
	}
	if s.reporter == nil {
		s.reporter = failure.ReporterFunc(func(failure.Event) {})
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LogWorkoutInput captures the payload from the API layer.
type LogWorkoutInput struct {
	UserID           string
	WorkoutTitle     string
	Duration         int
	Calories         int
	Exercises        []Exercise
	DifficultyRating Difficulty
}

// LogWorkoutResult reports the outcome of a submission. Persisted is
// false when the transaction failed and a failure event was emitted;
// callers must then treat the log as possibly absent.
type LogWorkoutResult struct {
	LogID          string
	UnlockedBadges []Badge
	Persisted      bool
}

// LogWorkout runs the workout logging transaction. The log row and
// every derived profile field commit together or not at all.
func (s *Service) LogWorkout(ctx context.Context, input LogWorkoutInput) (LogWorkoutResult, error) {
	if input.UserID == "" {
		return LogWorkoutResult{}, ErrMissingUserID
	}

	log := WorkoutLog{
		ID:               uuid.NewString(),
		UserID:           input.UserID,
		WorkoutTitle:     input.WorkoutTitle,
		Duration:         input.Duration,
		Calories:         input.Calories,
		Exercises:        input.Exercises,
		DifficultyRating: input.DifficultyRating,
	}

	unlocked, err := s.store.SubmitWorkout(ctx, log)
	if err != nil {
		s.logger.Error("workout log transaction failed", zap.String("user_id", input.UserID), zap.Error(err))
		s.reporter.Report(failure.Event{
			Path:      fmt.Sprintf("transaction on users/%s and users/%s/workoutLogs/%s", input.UserID, input.UserID, log.ID),
			Operation: failure.OpWrite,
		})
		return LogWorkoutResult{UnlockedBadges: []Badge{}}, nil
	}

	s.awardRank(ctx, input.UserID, XPPerWorkout)

	if unlocked == nil {
		unlocked = []Badge{}
	}
	return LogWorkoutResult{LogID: log.ID, UnlockedBadges: unlocked, Persisted: true}, nil
}

// WorkoutLogs lists a user's logs newest first. Failures surface on the
// reporting channel and yield an empty page.
func (s *Service) WorkoutLogs(ctx context.Context, userID string, cursor *Cursor, limit int) ([]WorkoutLog, *Cursor, error) {
	if userID == "" {
		return nil, nil, ErrMissingUserID
	}

	logs, next, err := s.store.WorkoutLogs(ctx, userID, cursor, limit)
	if err != nil {
		s.reporter.Report(failure.Event{
			Path:      fmt.Sprintf("users/%s/workoutLogs", userID),
			Operation: failure.OpList,
		})
		return []WorkoutLog{}, nil, nil
	}
	return logs, next, nil
}

// RateWorkout attaches a difficulty rating to an existing log. The
// update is best-effort and outside the core invariant set.
func (s *Service) RateWorkout(ctx context.Context, userID, logID string, rating Difficulty) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if !rating.Valid() {
		return ErrInvalidRating
	}

	if err := s.store.RateWorkout(ctx, userID, logID, rating); err != nil {
		if errors.Is(err, ErrLogNotFound) {
			return err
		}
		s.reporter.Report(failure.Event{
			Path:                fmt.Sprintf("users/%s/workoutLogs/%s", userID, logID),
			Operation:           failure.OpUpdate,
			RequestResourceData: map[string]string{"difficultyRating": string(rating)},
		})
	}
	return nil
}

// ProfileView couples the stored profile with its derived level state.
type ProfileView struct {
	Profile  UserProfile
	Progress LevelProgress
}

// Profile fetches a user's progression profile.
func (s *Service) Profile(ctx context.Context, userID string) (*ProfileView, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	profile, err := s.store.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return &ProfileView{Profile: *profile, Progress: ProgressToNextLevel(profile.XP)}, nil
}

// ProfileEdits holds the user-settable profile fields. Nil fields are
// left unchanged.
type ProfileEdits struct {
	DisplayName *string
	PhotoURL    *string
}

// UpdateProfile applies user edits to display fields. Best-effort: a
// missing profile surfaces, other store failures are reported and
// swallowed like RateWorkout.
func (s *Service) UpdateProfile(ctx context.Context, userID string, edits ProfileEdits) error {
	if userID == "" {
		return ErrMissingUserID
	}

	if err := s.store.UpdateProfile(ctx, userID, edits); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return err
		}
		data := map[string]string{}
		if edits.DisplayName != nil {
			data["displayName"] = *edits.DisplayName
		}
		if edits.PhotoURL != nil {
			data["photoURL"] = *edits.PhotoURL
		}
		s.reporter.Report(failure.Event{
			Path:                fmt.Sprintf("users/%s", userID),
			Operation:           failure.OpUpdate,
			RequestResourceData: data,
		})
	}
	return nil
}

// CreatePostInput captures the payload for a community post.
type CreatePostInput struct {
	AuthorID       string
	AuthorName     string
	AuthorPhotoURL string
	Content        string
	Category       PostCategory
}

// CreatePostResult reports the created post id and any badge that
// unlocked with it.
type CreatePostResult struct {
	PostID        string
	BadgeUnlocked *Badge
	Persisted     bool
}

// CreatePost creates a post and bumps the author's post count in one
// transaction, unlocking top-contributor at the threshold.
func (s *Service) CreatePost(ctx context.Context, input CreatePostInput) (CreatePostResult, error) {
	if input.AuthorID == "" {
		return CreatePostResult{}, ErrMissingUserID
	}

	post := Post{
		ID:             uuid.NewString(),
		AuthorID:       input.AuthorID,
		AuthorName:     input.AuthorName,
		AuthorPhotoURL: input.AuthorPhotoURL,
		Content:        input.Content,
		Category:       input.Category,
	}

	badge, err := s.store.CreatePost(ctx, post)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return CreatePostResult{}, err
		}
		s.logger.Error("post transaction failed", zap.String("author_id", input.AuthorID), zap.Error(err))
		s.reporter.Report(failure.Event{
			Path:      fmt.Sprintf("transaction on users/%s and posts", input.AuthorID),
			Operation: failure.OpWrite,
		})
		return CreatePostResult{}, nil
	}
	return CreatePostResult{PostID: post.ID, BadgeUnlocked: badge, Persisted: true}, nil
}

// DeletePost removes a post and its comments. Best-effort.
func (s *Service) DeletePost(ctx context.Context, postID string) {
	if err := s.store.DeletePost(ctx, postID); err != nil {
		s.reporter.Report(failure.Event{
			Path:      fmt.Sprintf("posts/%s", postID),
			Operation: failure.OpDelete,
		})
	}
}

// LikeResult reports the like state after a toggle.
type LikeResult struct {
	Liked     bool
	Persisted bool
}

// ToggleLike flips the user's like on a post. The direction is derived
// from current membership inside the transaction, never from a
// caller-supplied flag.
func (s *Service) ToggleLike(ctx context.Context, postID, userID string) (LikeResult, error) {
	if userID == "" {
		return LikeResult{}, ErrMissingUserID
	}

	liked, err := s.store.ToggleLike(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return LikeResult{}, err
		}
		s.reporter.Report(failure.Event{
			Path:                fmt.Sprintf("posts/%s", postID),
			Operation:           failure.OpUpdate,
			RequestResourceData: map[string]string{"likedBy": userID},
		})
		return LikeResult{}, nil
	}
	return LikeResult{Liked: liked, Persisted: true}, nil
}

// AddCommentInput captures a new comment.
type AddCommentInput struct {
	PostID         string
	AuthorID       string
	AuthorName     string
	AuthorPhotoURL string
	Content        string
}

// AddComment inserts the comment and increments the post's comment
// counter atomically. Best-effort.
func (s *Service) AddComment(ctx context.Context, input AddCommentInput) error {
	if input.AuthorID == "" {
		return ErrMissingUserID
	}

	comment := Comment{
		ID:             uuid.NewString(),
		PostID:         input.PostID,
		AuthorID:       input.AuthorID,
		AuthorName:     input.AuthorName,
		AuthorPhotoURL: input.AuthorPhotoURL,
		Content:        input.Content,
	}

	if err := s.store.AddComment(ctx, comment); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return err
		}
		s.reporter.Report(failure.Event{
			Path:                fmt.Sprintf("posts/%s/comments", input.PostID),
			Operation:           failure.OpCreate,
			RequestResourceData: map[string]string{"content": input.Content},
		})
	}
	return nil
}

// DeleteComment removes a comment and decrements the comment counter
// atomically. Best-effort.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID string) {
	if err := s.store.DeleteComment(ctx, postID, commentID); err != nil {
		s.reporter.Report(failure.Event{
			Path:      fmt.Sprintf("posts/%s/comments/%s", postID, commentID),
			Operation: failure.OpDelete,
		})
	}
}

// Posts lists recent community posts.
func (s *Service) Posts(ctx context.Context, limit int) ([]Post, error) {
	posts, err := s.store.Posts(ctx, limit)
	if err != nil {
		s.reporter.Report(failure.Event{Path: "posts", Operation: failure.OpList})
		return []Post{}, nil
	}
	return posts, nil
}

// CreateChallengeInput captures a new challenge. The author joins their
// own challenge in the creating transaction.
type CreateChallengeInput struct {
	AuthorID    string
	Title       string
	Description string
	Type        ChallengeType
	GoalValue   int
	GoalUnit    string
	EndDate     *time.Time
}

// CreateChallenge creates the challenge with the author as its first
// participant.
func (s *Service) CreateChallenge(ctx context.Context, input CreateChallengeInput) (string, error) {
	if input.AuthorID == "" {
		return "", ErrMissingUserID
	}

	challenge := Challenge{
		ID:          uuid.NewString(),
		AuthorID:    input.AuthorID,
		Title:       input.Title,
		Description: input.Description,
		Type:        input.Type,
		GoalValue:   input.GoalValue,
		GoalUnit:    input.GoalUnit,
		EndDate:     input.EndDate,
	}

	if err := s.store.CreateChallenge(ctx, challenge); err != nil {
		s.reporter.Report(failure.Event{
			Path:      fmt.Sprintf("transaction on users/%s and challenges", input.AuthorID),
			Operation: failure.OpWrite,
		})
		return "", err
	}
	return challenge.ID, nil
}

// ChallengeToggle reports the participation state after a toggle.
type ChallengeToggle struct {
	Joined        bool
	BadgeUnlocked *Badge
}

// ToggleChallenge joins or leaves a challenge based on current
// participation. Joining awards XP and may unlock first-challenge.
// Unlike the fire-and-forget flows, failures are returned after being
// reported so the UI can roll back optimistic state.
func (s *Service) ToggleChallenge(ctx context.Context, userID, challengeID string) (ChallengeToggle, error) {
	if userID == "" {
		return ChallengeToggle{}, ErrMissingUserID
	}

	result, err := s.store.ToggleChallenge(ctx, userID, challengeID)
	if err != nil {
		if errors.Is(err, ErrChallengeNotFound) || errors.Is(err, ErrProfileNotFound) {
			return ChallengeToggle{}, err
		}
		s.reporter.Report(failure.Event{
			Path:      fmt.Sprintf("transaction on users/%s and challenges/%s", userID, challengeID),
			Operation: failure.OpUpdate,
		})
		return ChallengeToggle{}, err
	}

	if result.Joined {
		s.awardRank(ctx, userID, XPPerChallengeJoin)
	}
	return result, nil
}

// Challenges lists all challenges.
func (s *Service) Challenges(ctx context.Context) ([]Challenge, error) {
	challenges, err := s.store.Challenges(ctx)
	if err != nil {
		s.reporter.Report(failure.Event{Path: "challenges", Operation: failure.OpList})
		return []Challenge{}, nil
	}
	return challenges, nil
}

// GroupToggle reports the membership state after a toggle.
type GroupToggle struct {
	Joined    bool
	Persisted bool
}

// ToggleGroup joins or leaves a group based on current membership.
// Best-effort.
func (s *Service) ToggleGroup(ctx context.Context, userID, groupID string) (GroupToggle, error) {
	if userID == "" {
		return GroupToggle{}, ErrMissingUserID
	}

	joined, err := s.store.ToggleGroup(ctx, userID, groupID)
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			return GroupToggle{}, err
		}
		s.reporter.Report(failure.Event{
			Path:      fmt.Sprintf("transaction on users/%s and groups/%s", userID, groupID),
			Operation: failure.OpUpdate,
		})
		return GroupToggle{}, nil
	}
	return GroupToggle{Joined: joined, Persisted: true}, nil
}

// Groups lists all groups.
func (s *Service) Groups(ctx context.Context) ([]Group, error) {
	groups, err := s.store.Groups(ctx)
	if err != nil {
		s.reporter.Report(failure.Event{Path: "groups", Operation: failure.OpList})
		return []Group{}, nil
	}
	return groups, nil
}

// CreateSessionInput captures a new group workout session.
type CreateSessionInput struct {
	HostID       string
	HostName     string
	HostPhotoURL string
	WorkoutTitle string
}

// CreateSession starts a live group workout with the host as its first
// participant. Failures are reported and returned so the UI can roll
// back optimistic state.
func (s *Service) CreateSession(ctx context.Context, input CreateSessionInput) (string, error) {
	if input.HostID == "" {
		return "", ErrMissingUserID
	}

	session := WorkoutSession{
		ID:           uuid.NewString(),
		HostID:       input.HostID,
		HostName:     input.HostName,
		HostPhotoURL: input.HostPhotoURL,
		WorkoutTitle: input.WorkoutTitle,
		Status:       SessionActive,
		Participants: []SessionParticipant{{
			UserID:      input.HostID,
			DisplayName: input.HostName,
			PhotoURL:    input.HostPhotoURL,
		}},
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		s.reporter.Report(failure.Event{
			Path:      "groupWorkoutSessions",
			Operation: failure.OpCreate,
		})
		return "", err
	}
	return session.ID, nil
}

// JoinSession adds the participant to a live session. Joining twice is
// a no-op. Failures are reported and returned.
func (s *Service) JoinSession(ctx context.Context, sessionID string, participant SessionParticipant) error {
	if participant.UserID == "" {
		return ErrMissingUserID
	}

	if err := s.store.JoinSession(ctx, sessionID, participant); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return err
		}
		s.reporter.Report(failure.Event{
			Path:                fmt.Sprintf("groupWorkoutSessions/%s", sessionID),
			Operation:           failure.OpUpdate,
			RequestResourceData: map[string]string{"participant": participant.UserID},
		})
		return err
	}
	return nil
}

// Sessions lists group workout sessions newest first.
func (s *Service) Sessions(ctx context.Context) ([]WorkoutSession, error) {
	sessions, err := s.store.Sessions(ctx)
	if err != nil {
		s.reporter.Report(failure.Event{Path: "groupWorkoutSessions", Operation: failure.OpList})
		return []WorkoutSession{}, nil
	}
	return sessions, nil
}

func (s *Service) awardRank(ctx context.Context, userID string, delta int) {
	if s.ranks == nil {
		return
	}
	if err := s.ranks.RecordXP(ctx, userID, delta); err != nil {
		s.logger.Warn("leaderboard update failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// Package postgres provides the transactional store backing the
// progression engine. Every multi-row mutation runs inside a single
// transaction so the log and all derived profile state commit together
// or not at all.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Z-testacc/ActiLeap/internal/domain"
	"github.com/Z-testacc/ActiLeap/internal/events"
	"github.com/Z-testacc/ActiLeap/internal/observability"
)

// Repository implements domain.Store on top of pgx.
type Repository struct {
	pool  *pgxpool.Pool
	clock func() time.Time
}

// RepositoryOption configures optional repository behaviour.
type RepositoryOption func(*Repository)

// WithClock overrides the wall clock, used by tests to pin temporal
// decisions (streaks, rollup buckets).
func WithClock(clock func() time.Time) RepositoryOption {
	return func(r *Repository) { r.clock = clock }
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool, opts ...RepositoryOption) *Repository {
	r := &Repository{pool: pool, clock: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const profileColumns = `user_id, display_name, photo_url, xp, streak, last_workout_date,
        total_calories_week, total_workouts_week, last_activity_week,
        total_calories_month, total_workouts_month, last_activity_month,
        cumulative_pushups, unlocked_badges, post_count, joined_challenges, joined_groups`

// SubmitWorkout creates the log row and recomputes the owner's profile
// inside one transaction, emitting outbox events for the commit.
func (r *Repository) SubmitWorkout(ctx context.Context, log domain.WorkoutLog) ([]domain.Badge, error) {
	now := r.clock().UTC()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	var priorLogs int
	if err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM workout_logs WHERE user_id=$1`, log.UserID).Scan(&priorLogs); err != nil {
		return nil, err
	}

	profile, err := lockProfile(ctx, tx, log.UserID)
	if err != nil {
		return nil, err
	}

	exercises, err := json.Marshal(exercisesToRows(log.Exercises))
	if err != nil {
		return nil, err
	}

	log.Date = now
	const insertLog = `INSERT INTO workout_logs (log_id, user_id, date, workout_title, duration_min, calories, exercises, difficulty_rating)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	if _, err = tx.Exec(ctx, insertLog,
		log.ID, log.UserID, log.Date, log.WorkoutTitle, log.Duration, log.Calories, exercises, nullIfEmpty(string(log.DifficultyRating)),
	); err != nil {
		return nil, err
	}

	var unlocked []domain.Badge
	if profile == nil {
		var created domain.UserProfile
		created, unlocked = domain.NewProfileFromWorkout(log.UserID, log, now)
		if err = insertProfile(ctx, tx, created, now); err != nil {
			return nil, err
		}
	} else {
		update := domain.ApplyWorkoutToProfile(*profile, priorLogs, log, now)
		unlocked = update.NewBadges

		const stmt = `UPDATE user_profiles SET
            xp = xp + $2,
            streak = $3,
            last_workout_date = $4,
            total_calories_week = $5, total_workouts_week = $6, last_activity_week = $7,
            total_calories_month = $8, total_workouts_month = $9, last_activity_month = $10,
            cumulative_pushups = $11,
            unlocked_badges = unlocked_badges || $12::text[],
            updated_at = $13
            WHERE user_id = $1`
		if _, err = tx.Exec(ctx, stmt,
			log.UserID,
			update.XPDelta,
			update.Streak,
			update.LastWorkoutDate,
			update.TotalCaloriesThisWeek, update.TotalWorkoutsThisWeek, update.LastActivityWeek,
			update.TotalCaloriesThisMonth, update.TotalWorkoutsThisMonth, update.LastActivityMonth,
			update.CumulativePushups,
			badgeStrings(update.NewBadges),
			now,
		); err != nil {
			return nil, err
		}
	}

	if err = r.insertOutbox(ctx, tx, "workout.logged", log.UserID, log.ID, events.WorkoutLogged{
		LogID:        log.ID,
		UserID:       log.UserID,
		WorkoutTitle: log.WorkoutTitle,
		Duration:     log.Duration,
		Calories:     log.Calories,
		LoggedAt:     now,
	}); err != nil {
		return nil, err
	}
	for _, badge := range unlocked {
		if err = r.insertOutbox(ctx, tx, "badge.unlocked", log.UserID, log.UserID+":"+string(badge), events.BadgeUnlocked{
			UserID:     log.UserID,
			Badge:      string(badge),
			UnlockedAt: now,
		}); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	observability.RecordWorkoutPersisted(now)
	for _, badge := range unlocked {
		observability.RecordBadgeUnlock(string(badge))
	}
	return unlocked, nil
}

// WorkoutLogs returns a user's logs newest first with cursor pagination.
func (r *Repository) WorkoutLogs(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.WorkoutLog, *domain.Cursor, error) {
	args := []interface{}{userID, limit}
	query := `SELECT log_id, user_id, date, workout_title, duration_min, calories, exercises, difficulty_rating
        FROM workout_logs WHERE user_id=$1`

	if cursor != nil {
		query += ` AND (date, log_id) < ($3, $4)`
		args = append(args, cursor.Date, cursor.ID)
	}
	query += ` ORDER BY date DESC, log_id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.WorkoutLog, 0, limit)
	for rows.Next() {
		log, scanErr := scanWorkoutLog(rows)
		if scanErr != nil {
			return nil, nil, scanErr
		}
		results = append(results, log)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var next *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		next = &domain.Cursor{Date: last.Date, ID: last.ID}
	}
	return results, next, nil
}

// RateWorkout attaches a difficulty rating to an existing log. This is
// the one post-creation mutation a log permits.
func (r *Repository) RateWorkout(ctx context.Context, userID, logID string, rating domain.Difficulty) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE workout_logs SET difficulty_rating=$3 WHERE user_id=$1 AND log_id=$2`,
		userID, logID, string(rating),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLogNotFound
	}
	return nil
}

// Profile fetches a user's progression profile, nil when absent.
func (r *Repository) Profile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE user_id=$1`, userID)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfile applies user edits to the display fields. Nil edits
// leave the stored value in place.
func (r *Repository) UpdateProfile(ctx context.Context, userID string, edits domain.ProfileEdits) error {
	const stmt = `UPDATE user_profiles SET
        display_name = COALESCE($2, display_name),
        photo_url = COALESCE($3, photo_url),
        updated_at = $4
        WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, stmt, userID, edits.DisplayName, edits.PhotoURL, r.clock().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func lockProfile(ctx context.Context, tx pgx.Tx, userID string) (*domain.UserProfile, error) {
	row := tx.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE user_id=$1 FOR UPDATE`, userID)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

func insertProfile(ctx context.Context, tx pgx.Tx, p domain.UserProfile, now time.Time) error {
	const stmt = `INSERT INTO user_profiles (` + profileColumns + `, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$18)`
	_, err := tx.Exec(ctx, stmt,
		p.ID, p.DisplayName, p.PhotoURL, p.XP, p.Streak, p.LastWorkoutDate,
		p.TotalCaloriesThisWeek, p.TotalWorkoutsThisWeek, p.LastActivityWeek,
		p.TotalCaloriesThisMonth, p.TotalWorkoutsThisMonth, p.LastActivityMonth,
		p.CumulativePushups, badgeStrings(p.UnlockedBadges), p.PostCount,
		p.JoinedChallenges, p.JoinedGroups, now,
	)
	return err
}

func scanProfile(row pgx.Row) (*domain.UserProfile, error) {
	var p domain.UserProfile
	var badges []string
	var challenges, groups []string
	err := row.Scan(
		&p.ID, &p.DisplayName, &p.PhotoURL, &p.XP, &p.Streak, &p.LastWorkoutDate,
		&p.TotalCaloriesThisWeek, &p.TotalWorkoutsThisWeek, &p.LastActivityWeek,
		&p.TotalCaloriesThisMonth, &p.TotalWorkoutsThisMonth, &p.LastActivityMonth,
		&p.CumulativePushups, &badges, &p.PostCount, &challenges, &groups,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: user profile: %v", domain.ErrCorruptRecord, err)
	}

	p.UnlockedBadges = make([]domain.Badge, 0, len(badges))
	for _, b := range badges {
		p.UnlockedBadges = append(p.UnlockedBadges, domain.Badge(b))
	}
	p.JoinedChallenges = challenges
	p.JoinedGroups = groups
	return &p, nil
}

// exerciseRow is the JSON shape exercises take inside the log document.
type exerciseRow struct {
	Name   string  `json:"name"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

func exercisesToRows(exercises []domain.Exercise) []exerciseRow {
	rows := make([]exerciseRow, 0, len(exercises))
	for _, ex := range exercises {
		rows = append(rows, exerciseRow(ex))
	}
	return rows
}

func scanWorkoutLog(rows pgx.Rows) (domain.WorkoutLog, error) {
	var log domain.WorkoutLog
	var exercises []byte
	var rating *string
	if err := rows.Scan(&log.ID, &log.UserID, &log.Date, &log.WorkoutTitle, &log.Duration, &log.Calories, &exercises, &rating); err != nil {
		return domain.WorkoutLog{}, fmt.Errorf("%w: workout log: %v", domain.ErrCorruptRecord, err)
	}

	var decoded []exerciseRow
	if len(exercises) > 0 {
		if err := json.Unmarshal(exercises, &decoded); err != nil {
			return domain.WorkoutLog{}, fmt.Errorf("%w: workout log exercises: %v", domain.ErrCorruptRecord, err)
		}
	}
	log.Exercises = make([]domain.Exercise, 0, len(decoded))
	for _, row := range decoded {
		log.Exercises = append(log.Exercises, domain.Exercise(row))
	}
	if rating != nil {
		log.DifficultyRating = domain.Difficulty(*rating)
	}
	return log, nil
}

func (r *Repository) insertOutbox(ctx context.Context, tx pgx.Tx, eventType, userID, aggregateID string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	dedupeKey := fmt.Sprintf("%s:%s", aggregateID, eventType)

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (dedupe_key) DO NOTHING`
	_, err = tx.Exec(ctx, stmt,
		meta.AggregateType,
		aggregateID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		userID,
		body,
		dedupeKey,
	)
	return err
}

func badgeStrings(badges []domain.Badge) []string {
	out := make([]string, 0, len(badges))
	for _, b := range badges {
		out = append(out, string(b))
	}
	return out
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	AggregateType string
	Topic         string
	SchemaSubject string
}

var eventCatalog = map[string]EventMetadata{
	"workout.logged": {
		AggregateType: "workout_log",
		Topic:         "workout_events",
		SchemaSubject: "workout_events-value",
	},
	"badge.unlocked": {
		AggregateType: "user_profile",
		Topic:         "progression_events",
		SchemaSubject: "progression_events-value",
	},
	"challenge.toggled": {
		AggregateType: "challenge",
		Topic:         "progression_events",
		SchemaSubject: "progression_events-value",
	},
	"post.created": {
		AggregateType: "post",
		Topic:         "community_events",
		SchemaSubject: "community_events-value",
	},
}

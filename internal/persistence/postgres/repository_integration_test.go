//go:build integration

package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/Z-testacc/ActiLeap/internal/domain"
)

// testClock is a settable wall clock for pinning streak and rollup
// decisions.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newWorkout(userID string, exercises ...domain.Exercise) domain.WorkoutLog {
	return domain.WorkoutLog{
		ID:           uuid.NewString(),
		UserID:       userID,
		WorkoutTitle: "Session",
		Duration:     45,
		Calories:     300,
		Exercises:    exercises,
	}
}

func TestSubmitWorkoutCreatesProfile(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	clock := &testClock{now: time.Date(2026, time.August, 24, 9, 0, 0, 0, time.UTC)}
	repo := NewRepository(pool, WithClock(clock.Now))

	userID := uuid.NewString()
	badges, err := repo.SubmitWorkout(ctx, newWorkout(userID))
	require.NoError(t, err)
	require.Equal(t, []domain.Badge{domain.BadgeFirstWorkout}, badges)

	profile, err := repo.Profile(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	require.Equal(t, domain.XPPerWorkout, profile.XP)
	require.Equal(t, 1, profile.Streak)
	require.Equal(t, 300, profile.TotalCaloriesThisWeek)
	require.Equal(t, 1, profile.TotalWorkoutsThisWeek)
	require.Equal(t, "2026-W35", profile.LastActivityWeek)
	require.Equal(t, "2026-08", profile.LastActivityMonth)
	require.True(t, profile.HasBadge(domain.BadgeFirstWorkout))

	require.Equal(t, 1, countOutbox(t, ctx, pool, "workout.logged"))
	require.Equal(t, 1, countOutbox(t, ctx, pool, "badge.unlocked"))
}

func TestSubmitWorkoutStreakAndRollups(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	clock := &testClock{now: time.Date(2026, time.August, 24, 9, 0, 0, 0, time.UTC)}
	repo := NewRepository(pool, WithClock(clock.Now))

	userID := uuid.NewString()
	_, err := repo.SubmitWorkout(ctx, newWorkout(userID))
	require.NoError(t, err)

	// Next calendar day, same ISO week: streak extends, buckets accumulate.
	clock.now = clock.now.AddDate(0, 0, 1)
	_, err = repo.SubmitWorkout(ctx, newWorkout(userID))
	require.NoError(t, err)

	profile, err := repo.Profile(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 2, profile.Streak)
	require.Equal(t, 2*domain.XPPerWorkout, profile.XP)
	require.Equal(t, 600, profile.TotalCaloriesThisWeek)
	require.Equal(t, 2, profile.TotalWorkoutsThisWeek)

	// Eleven days later: streak resets, week and month buckets restart.
	clock.now = time.Date(2026, time.September, 5, 9, 0, 0, 0, time.UTC)
	_, err = repo.SubmitWorkout(ctx, newWorkout(userID))
	require.NoError(t, err)

	profile, err = repo.Profile(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 1, profile.Streak)
	require.Equal(t, 300, profile.TotalCaloriesThisWeek)
	require.Equal(t, 1, profile.TotalWorkoutsThisWeek)
	require.Equal(t, 300, profile.TotalCaloriesThisMonth)
	require.Equal(t, 1, profile.TotalWorkoutsThisMonth)
	require.Equal(t, "2026-09", profile.LastActivityMonth)
}

func TestSubmitWorkoutSameDayKeepsStreak(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	clock := &testClock{now: time.Date(2026, time.August, 24, 7, 0, 0, 0, time.UTC)}
	repo := NewRepository(pool, WithClock(clock.Now))

	userID := uuid.NewString()
	_, err := repo.SubmitWorkout(ctx, newWorkout(userID))
	require.NoError(t, err)

	clock.now = clock.now.Add(10 * time.Hour)
	badges, err := repo.SubmitWorkout(ctx, newWorkout(userID))
	require.NoError(t, err)
	require.Empty(t, badges, "first-workout must not unlock twice")

	profile, err := repo.Profile(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 1, profile.Streak)
	require.Equal(t, 2, profile.TotalWorkoutsThisWeek)
	require.Equal(t, 2*domain.XPPerWorkout, profile.XP)
}

func TestSubmitWorkoutRollsBackAtomically(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	clock := &testClock{now: time.Date(2026, time.August, 24, 9, 0, 0, 0, time.UTC)}
	repo := NewRepository(pool, WithClock(clock.Now))

	userID := uuid.NewString()
	log := newWorkout(userID)
	_, err := repo.SubmitWorkout(ctx, log)
	require.NoError(t, err)

	outboxBefore := countOutbox(t, ctx, pool, "")

	// Replaying the same log id violates the primary key; nothing from
	// the failed transaction may stick.
	clock.now = clock.now.AddDate(0, 0, 1)
	_, err = repo.SubmitWorkout(ctx, log)
	require.Error(t, err)

	profile, err := repo.Profile(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, domain.XPPerWorkout, profile.XP)
	require.Equal(t, 1, profile.Streak)

	var logCount int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM workout_logs WHERE user_id=$1`, userID).Scan(&logCount))
	require.Equal(t, 1, logCount)
	require.Equal(t, outboxBefore, countOutbox(t, ctx, pool, ""))
}

func TestPushupProUnlocksAcrossWorkouts(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	clock := &testClock{now: time.Date(2026, time.August, 24, 9, 0, 0, 0, time.UTC)}
	repo := NewRepository(pool, WithClock(clock.Now))

	userID := uuid.NewString()
	_, err := repo.SubmitWorkout(ctx, newWorkout(userID, domain.Exercise{Name: "Push-Up", Sets: 4, Reps: 15}))
	require.NoError(t, err)

	clock.now = clock.now.AddDate(0, 0, 1)
	badges, err := repo.SubmitWorkout(ctx, newWorkout(userID, domain.Exercise{Name: "Diamond Push Up", Sets: 4, Reps: 10}))
	require.NoError(t, err)
	require.Contains(t, badges, domain.BadgePushupPro)

	profile, err := repo.Profile(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 100, profile.CumulativePushups)
}

func TestWorkoutLogsPagination(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	clock := &testClock{now: time.Date(2026, time.August, 24, 9, 0, 0, 0, time.UTC)}
	repo := NewRepository(pool, WithClock(clock.Now))

	userID := uuid.NewString()
	for i := 0; i < 3; i++ {
		_, err := repo.SubmitWorkout(ctx, newWorkout(userID))
		require.NoError(t, err)
		clock.now = clock.now.Add(time.Hour)
	}

	page, cursor, err := repo.WorkoutLogs(ctx, userID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, cursor)
	require.True(t, page[0].Date.After(page[1].Date), "newest first")

	rest, next, err := repo.WorkoutLogs(ctx, userID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Nil(t, next)
	require.True(t, page[1].Date.After(rest[0].Date))
}

func TestRateWorkout(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	repo := NewRepository(pool)

	userID := uuid.NewString()
	log := newWorkout(userID)
	_, err := repo.SubmitWorkout(ctx, log)
	require.NoError(t, err)

	require.NoError(t, repo.RateWorkout(ctx, userID, log.ID, domain.DifficultyHard))

	page, _, err := repo.WorkoutLogs(ctx, userID, nil, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, domain.DifficultyHard, page[0].DifficultyRating)

	err = repo.RateWorkout(ctx, userID, uuid.NewString(), domain.DifficultyEasy)
	require.ErrorIs(t, err, domain.ErrLogNotFound)
}

func TestCreatePostUnlocksTopContributor(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	repo := NewRepository(pool)

	userID := uuid.NewString()
	_, err := repo.SubmitWorkout(ctx, newWorkout(userID))
	require.NoError(t, err)

	for i := 1; i <= domain.TopContributorPostCount; i++ {
		badge, err := repo.CreatePost(ctx, domain.Post{
			ID:       uuid.NewString(),
			AuthorID: userID,
			Content:  fmt.Sprintf("post %d", i),
			Category: domain.PostCategoryGeneral,
		})
		require.NoError(t, err)

		if i < domain.TopContributorPostCount {
			require.Nil(t, badge, "post %d must not unlock the badge", i)
		} else {
			require.NotNil(t, badge)
			require.Equal(t, domain.BadgeTopContributor, *badge)
		}
	}

	profile, err := repo.Profile(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, domain.TopContributorPostCount, profile.PostCount)
	require.True(t, profile.HasBadge(domain.BadgeTopContributor))
}

func TestCreatePostRequiresProfile(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	repo := NewRepository(pool)

	_, err := repo.CreatePost(ctx, domain.Post{
		ID:       uuid.NewString(),
		AuthorID: uuid.NewString(),
		Content:  "hello",
	})
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestToggleLikeDoubleSend(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	repo := NewRepository(pool)

	author := uuid.NewString()
	_, err := repo.SubmitWorkout(ctx, newWorkout(author))
	require.NoError(t, err)

	postID := uuid.NewString()
	_, err = repo.CreatePost(ctx, domain.Post{ID: postID, AuthorID: author, Content: "like me"})
	require.NoError(t, err)

	liker := uuid.NewString()
	liked, err := repo.ToggleLike(ctx, postID, liker)
	require.NoError(t, err)
	require.True(t, liked)

	// The same toggle again reverses the like instead of double counting.
	liked, err = repo.ToggleLike(ctx, postID, liker)
	require.NoError(t, err)
	require.False(t, liked)

	posts, err := repo.Posts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, 0, posts[0].LikeCount)
	require.Empty(t, posts[0].LikedBy)
}

func TestCommentsAdjustPostCounter(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	repo := NewRepository(pool)

	author := uuid.NewString()
	_, err := repo.SubmitWorkout(ctx, newWorkout(author))
	require.NoError(t, err)

	postID := uuid.NewString()
	_, err = repo.CreatePost(ctx, domain.Post{ID: postID, AuthorID: author, Content: "discuss"})
	require.NoError(t, err)

	commentID := uuid.NewString()
	require.NoError(t, repo.AddComment(ctx, domain.Comment{
		ID:       commentID,
		PostID:   postID,
		AuthorID: author,
		Content:  "first",
	}))

	posts, err := repo.Posts(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, posts[0].CommentCount)
	require.Len(t, posts[0].Comments, 1)

	require.NoError(t, repo.DeleteComment(ctx, postID, commentID))

	posts, err = repo.Posts(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 0, posts[0].CommentCount)
	require.Empty(t, posts[0].Comments)
}

func TestChallengeJoinAndLeave(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	repo := NewRepository(pool)

	author := uuid.NewString()
	joiner := uuid.NewString()
	for _, id := range []string{author, joiner} {
		_, err := repo.SubmitWorkout(ctx, newWorkout(id))
		require.NoError(t, err)
	}

	challengeID := uuid.NewString()
	require.NoError(t, repo.CreateChallenge(ctx, domain.Challenge{
		ID:       challengeID,
		AuthorID: author,
		Title:    "100 push-ups a day",
		Type:     domain.ChallengePerformanceBased,
	}))

	result, err := repo.ToggleChallenge(ctx, joiner, challengeID)
	require.NoError(t, err)
	require.True(t, result.Joined)
	require.NotNil(t, result.BadgeUnlocked)
	require.Equal(t, domain.BadgeFirstChallenge, *result.BadgeUnlocked)

	profile, err := repo.Profile(ctx, joiner)
	require.NoError(t, err)
	require.Equal(t, domain.XPPerWorkout+domain.XPPerChallengeJoin, profile.XP)
	require.Contains(t, profile.JoinedChallenges, challengeID)

	challenges, err := repo.Challenges(ctx)
	require.NoError(t, err)
	require.Len(t, challenges, 1)
	require.Equal(t, 2, challenges[0].ParticipantCount)

	// Leaving keeps the XP but removes the membership.
	result, err = repo.ToggleChallenge(ctx, joiner, challengeID)
	require.NoError(t, err)
	require.False(t, result.Joined)
	require.Nil(t, result.BadgeUnlocked)

	profile, err = repo.Profile(ctx, joiner)
	require.NoError(t, err)
	require.Equal(t, domain.XPPerWorkout+domain.XPPerChallengeJoin, profile.XP)
	require.NotContains(t, profile.JoinedChallenges, challengeID)

	challenges, err = repo.Challenges(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, challenges[0].ParticipantCount)
}

func TestToggleChallengeUnknownChallenge(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	repo := NewRepository(pool)

	userID := uuid.NewString()
	_, err := repo.SubmitWorkout(ctx, newWorkout(userID))
	require.NoError(t, err)

	_, err = repo.ToggleChallenge(ctx, userID, uuid.NewString())
	require.ErrorIs(t, err, domain.ErrChallengeNotFound)
}

func TestToggleGroupMembership(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	repo := NewRepository(pool)

	userID := uuid.NewString()
	_, err := repo.SubmitWorkout(ctx, newWorkout(userID))
	require.NoError(t, err)

	groupID := uuid.NewString()
	_, err = pool.Exec(ctx,
		`INSERT INTO groups (group_id, name, description, member_count) VALUES ($1, 'Morning Crew', 'dawn sessions', 0)`,
		groupID)
	require.NoError(t, err)

	joined, err := repo.ToggleGroup(ctx, userID, groupID)
	require.NoError(t, err)
	require.True(t, joined)

	groups, err := repo.Groups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, 1, groups[0].MemberCount)

	joined, err = repo.ToggleGroup(ctx, userID, groupID)
	require.NoError(t, err)
	require.False(t, joined)

	groups, err = repo.Groups(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, groups[0].MemberCount)
}

func countOutbox(t *testing.T, ctx context.Context, pool *pgxpool.Pool, eventType string) int {
	t.Helper()

	query := `SELECT COUNT(*) FROM outbox`
	args := []interface{}{}
	if eventType != "" {
		query += ` WHERE event_type=$1`
		args = append(args, eventType)
	}

	var count int
	require.NoError(t, pool.QueryRow(ctx, query, args...).Scan(&count))
	return count
}

func setupPostgres(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("actileap"),
		postgrescontainer.WithUsername("platform"),
		postgrescontainer.WithPassword("platform"),
	)
	require.NoError(t, err)

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pg.Terminate(ctx)
	}
	return pool, cleanup
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	t.Helper()

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	migrationsDir := resolvePath(t, "../../../db/postgres/migrations")
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "expected at least one migration .up.sql file")

	sort.Strings(files)

	for _, file := range files {
		contents, readErr := os.ReadFile(file)
		require.NoErrorf(t, readErr, "read migration %s", file)

		if _, execErr := pool.Exec(ctx, string(contents)); execErr != nil {
			require.NoErrorf(t, execErr, "execute migration %s", file)
		}
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}

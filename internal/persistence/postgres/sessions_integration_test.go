//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Z-testacc/ActiLeap/internal/domain"
)

func strPtr(s string) *string { return &s }

func newSession(hostID, hostName, title string) domain.WorkoutSession {
	return domain.WorkoutSession{
		ID:           uuid.NewString(),
		HostID:       hostID,
		HostName:     hostName,
		WorkoutTitle: title,
		Status:       domain.SessionActive,
		Participants: []domain.SessionParticipant{{UserID: hostID, DisplayName: hostName}},
	}
}

func TestUpdateProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	clock := &testClock{now: time.Date(2026, time.August, 24, 9, 0, 0, 0, time.UTC)}
	repo := NewRepository(pool, WithClock(clock.Now))

	userID := uuid.NewString()
	_, err := repo.SubmitWorkout(ctx, newWorkout(userID))
	require.NoError(t, err)

	err = repo.UpdateProfile(ctx, userID, domain.ProfileEdits{
		DisplayName: strPtr("Alex R"),
		PhotoURL:    strPtr("https://cdn.example/alex.png"),
	})
	require.NoError(t, err)

	profile, err := repo.Profile(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "Alex R", profile.DisplayName)
	require.Equal(t, "https://cdn.example/alex.png", profile.PhotoURL)

	// A name-only edit must leave the stored photo untouched.
	err = repo.UpdateProfile(ctx, userID, domain.ProfileEdits{DisplayName: strPtr("Alexandra")})
	require.NoError(t, err)

	profile, err = repo.Profile(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "Alexandra", profile.DisplayName)
	require.Equal(t, "https://cdn.example/alex.png", profile.PhotoURL)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	repo := NewRepository(pool)

	err := repo.UpdateProfile(ctx, uuid.NewString(), domain.ProfileEdits{DisplayName: strPtr("Ghost")})
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestCreateSessionAndList(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	clock := &testClock{now: time.Date(2026, time.August, 24, 18, 0, 0, 0, time.UTC)}
	repo := NewRepository(pool, WithClock(clock.Now))

	hostID := uuid.NewString()
	session := newSession(hostID, "Sam", "Evening HIIT")
	require.NoError(t, repo.CreateSession(ctx, session))

	clock.now = clock.now.Add(time.Hour)
	later := newSession(uuid.NewString(), "Robin", "Night Yoga")
	require.NoError(t, repo.CreateSession(ctx, later))

	sessions, err := repo.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	// Newest first.
	require.Equal(t, later.ID, sessions[0].ID)
	require.Equal(t, session.ID, sessions[1].ID)

	got := sessions[1]
	require.Equal(t, hostID, got.HostID)
	require.Equal(t, "Evening HIIT", got.WorkoutTitle)
	require.Equal(t, domain.SessionActive, got.Status)
	require.Len(t, got.Participants, 1)
	require.Equal(t, hostID, got.Participants[0].UserID)
}

func TestJoinSessionAddsParticipantOnce(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	repo := NewRepository(pool)

	session := newSession(uuid.NewString(), "Sam", "Trail Run")
	require.NoError(t, repo.CreateSession(ctx, session))

	joiner := domain.SessionParticipant{UserID: uuid.NewString(), DisplayName: "Alex"}
	require.NoError(t, repo.JoinSession(ctx, session.ID, joiner))

	// A double send keeps the roster unchanged.
	require.NoError(t, repo.JoinSession(ctx, session.ID, joiner))

	sessions, err := repo.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Len(t, sessions[0].Participants, 2)
	require.Equal(t, joiner.UserID, sessions[0].Participants[1].UserID)
}

func TestJoinSessionUnknownSession(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	t.Cleanup(cleanup)

	repo := NewRepository(pool)

	err := repo.JoinSession(ctx, uuid.NewString(), domain.SessionParticipant{UserID: "user-1"})
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

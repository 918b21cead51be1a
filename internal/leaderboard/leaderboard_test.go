package leaderboard

import (
	"context"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/require"
)

func TestRecordXPIncrementsScore(t *testing.T) {
	client, mock := redismock.NewClientMock()
	board := NewBoard(client)

	mock.ExpectZIncrBy(rankingKey, 25, "user-1").SetVal(25)

	require.NoError(t, board.RecordXP(context.Background(), "user-1", 25))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTopReturnsRankedEntries(t *testing.T) {
	client, mock := redismock.NewClientMock()
	board := NewBoard(client)

	mock.ExpectZRevRangeWithScores(rankingKey, 0, 2).SetVal([]redis.Z{
		{Member: "user-a", Score: 500},
		{Member: "user-b", Score: 275},
		{Member: "user-c", Score: 25},
	})

	entries, err := board.Top(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, Entry{UserID: "user-a", XP: 500, Rank: 1}, entries[0])
	require.Equal(t, Entry{UserID: "user-c", XP: 25, Rank: 3}, entries[2])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTopWithNonPositiveLimit(t *testing.T) {
	client, _ := redismock.NewClientMock()
	board := NewBoard(client)

	entries, err := board.Top(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRankUnknownUser(t *testing.T) {
	client, mock := redismock.NewClientMock()
	board := NewBoard(client)

	mock.ExpectZRevRank(rankingKey, "ghost").RedisNil()

	_, ok, err := board.Rank(context.Background(), "ghost")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRankKnownUser(t *testing.T) {
	client, mock := redismock.NewClientMock()
	board := NewBoard(client)

	mock.ExpectZRevRank(rankingKey, "user-b").SetVal(1)
	mock.ExpectZScore(rankingKey, "user-b").SetVal(275)

	entry, ok, err := board.Rank(context.Background(), "user-b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Entry{UserID: "user-b", XP: 275, Rank: 2}, entry)
	require.NoError(t, mock.ExpectationsWereMet())
}

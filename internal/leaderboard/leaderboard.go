// Package leaderboard maintains the XP ranking read model in Redis.
// Postgres stays the source of truth for XP; the sorted set exists so
// ranking reads never touch the profiles table.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const rankingKey = "leaderboard:xp"

// Entry is one row of the ranking.
type Entry struct {
	UserID string `json:"user_id"`
	XP     int    `json:"xp"`
	Rank   int    `json:"rank"`
}

// Board wraps the Redis sorted set holding cumulative XP per user.
type Board struct {
	client redis.Cmdable
}

// NewBoard constructs a Board on the given Redis client.
func NewBoard(client redis.Cmdable) *Board {
	return &Board{client: client}
}

// RecordXP adds the awarded XP to the user's score.
func (b *Board) RecordXP(ctx context.Context, userID string, delta int) error {
	if err := b.client.ZIncrBy(ctx, rankingKey, float64(delta), userID).Err(); err != nil {
		return fmt.Errorf("leaderboard incr: %w", err)
	}
	return nil
}

// Top returns the highest-scored users, best first. Ranks are 1-based.
func (b *Board) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}

	scored, err := b.client.ZRevRangeWithScores(ctx, rankingKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard range: %w", err)
	}

	entries := make([]Entry, 0, len(scored))
	for i, member := range scored {
		userID, ok := member.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			UserID: userID,
			XP:     int(member.Score),
			Rank:   i + 1,
		})
	}
	return entries, nil
}

// Rank returns the user's 1-based rank and score, or ok=false when the
// user has never scored.
func (b *Board) Rank(ctx context.Context, userID string) (Entry, bool, error) {
	rank, err := b.client.ZRevRank(ctx, rankingKey, userID).Result()
	if err == redis.Nil {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("leaderboard rank: %w", err)
	}

	score, err := b.client.ZScore(ctx, rankingKey, userID).Result()
	if err != nil && err != redis.Nil {
		return Entry{}, false, fmt.Errorf("leaderboard score: %w", err)
	}

	return Entry{UserID: userID, XP: int(score), Rank: int(rank) + 1}, true, nil
}

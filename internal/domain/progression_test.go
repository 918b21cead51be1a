package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelFromXP(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{xp: -50, level: 1},
		{xp: 0, level: 1},
		{xp: 199, level: 1},
		{xp: 200, level: 2},
		{xp: 399, level: 2},
		{xp: 400, level: 3},
		{xp: 1000, level: 6},
	}

	for _, tc := range cases {
		require.Equal(t, tc.level, LevelFromXP(tc.xp), "xp=%d", tc.xp)
	}
}

func TestLevelsAreMonotonic(t *testing.T) {
	prev := LevelFromXP(0)
	for xp := 1; xp <= 2000; xp++ {
		level := LevelFromXP(xp)
		require.GreaterOrEqual(t, level, prev, "level regressed at xp=%d", xp)
		prev = level
	}
}

func TestXPForLevelInvertsLevelFromXP(t *testing.T) {
	for level := 1; level <= 20; level++ {
		floor := XPForLevel(level)
		require.Equal(t, level, LevelFromXP(floor), "floor of level %d", level)
		if floor > 0 {
			require.Equal(t, level-1, LevelFromXP(floor-1), "one below floor of level %d", level)
		}
	}
}

func TestProgressToNextLevel(t *testing.T) {
	progress := ProgressToNextLevel(250)
	require.Equal(t, 2, progress.CurrentLevel)
	require.Equal(t, 50, progress.CurrentLevelXP)
	require.Equal(t, 200, progress.NextLevelXP)
	require.InDelta(t, 25.0, progress.ProgressPercentage, 0.0001)
}

func TestProgressAtLevelBoundary(t *testing.T) {
	progress := ProgressToNextLevel(200)
	require.Equal(t, 2, progress.CurrentLevel)
	require.Equal(t, 0, progress.CurrentLevelXP)
	require.InDelta(t, 0.0, progress.ProgressPercentage, 0.0001)
}

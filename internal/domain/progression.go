package domain

// XP awards and the level curve. The progression is linear: every
// LevelBaseXP of experience is one level.
const (
	XPPerWorkout       = 25
	XPPerChallengeJoin = 10
	LevelBaseXP        = 200
)

// LevelFromXP maps accumulated experience to a level. Level 1 covers
// 0-199 XP, level 2 covers 200-399 XP, and so on. Negative input clamps
// to level 1.
func LevelFromXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/LevelBaseXP + 1
}

// XPForLevel returns the total experience required to reach the given level.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * LevelBaseXP
}

// LevelProgress describes where a user sits within their current level.
type LevelProgress struct {
	CurrentLevel       int
	CurrentLevelXP     int
	NextLevelXP        int
	ProgressPercentage float64
}

// ProgressToNextLevel computes the user's position within the current level.
func ProgressToNextLevel(xp int) LevelProgress {
	level := LevelFromXP(xp)
	floor := XPForLevel(level)
	span := XPForLevel(level+1) - floor

	into := xp - floor
	if into < 0 {
		into = 0
	}

	return LevelProgress{
		CurrentLevel:       level,
		CurrentLevelXP:     into,
		NextLevelXP:        span,
		ProgressPercentage: float64(into) / float64(span) * 100,
	}
}

package domain

// Badge identifies an unlockable achievement. The set is closed; membership
// in a profile's UnlockedBadges is append-only.
type Badge string

const (
	BadgeFirstWorkout   Badge = "first-workout"
	BadgeSevenDayStreak Badge = "7-day-streak"
	BadgePushupPro      Badge = "push-up-pro"
	BadgeFirstChallenge Badge = "first-challenge"
	BadgeTopContributor Badge = "top-contributor"
)

// Unlock thresholds.
const (
	PushupProVolume         = 100
	StreakBadgeDays         = 7
	TopContributorPostCount = 10
)

// KnownBadges lists every badge the rule set can award.
func KnownBadges() []Badge {
	return []Badge{
		BadgeFirstWorkout,
		BadgeSevenDayStreak,
		BadgePushupPro,
		BadgeFirstChallenge,
		BadgeTopContributor,
	}
}

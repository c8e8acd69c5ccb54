package model

// Badge is a derived achievement label computed from a user's counters.
// Badges are never persisted.
type Badge string

const (
	BadgeTopCleaner        Badge = "top-cleaner"
	BadgeSpotAdopter       Badge = "spot-adopter"
	BadgeMarketplaceSeller Badge = "marketplace-seller"
	BadgeCleanupChampion   Badge = "cleanup-champion"
	BadgeTokenCollector    Badge = "token-collector"
)

var badgeIcons = map[Badge]string{
	BadgeTopCleaner:        "🏆",
	BadgeSpotAdopter:       "🌳",
	BadgeMarketplaceSeller: "🛒",
	BadgeCleanupChampion:   "🧹",
	BadgeTokenCollector:    "💰",
}

// Icon returns the emoji the mobile client renders for the badge.
func (b Badge) Icon() string {
	return badgeIcons[b]
}

// LeaderboardEntry is the API response for a single leaderboard row or
// a user's own stats.
type LeaderboardEntry struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Rank       int    `json:"rank,omitempty"`
	TotalScore int    `json:"totalScore"`
	ActivityCounters
	Badges     []Badge  `json:"badges"`
	BadgeIcons []string `json:"badgeIcons"`
}

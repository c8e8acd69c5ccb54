package model

import "time"

// ActivityCounters holds the per-user activity tallies that drive scoring.
// All counters start at zero and only ever increase.
type ActivityCounters struct {
	DumpsReported     int `json:"dumpsReported"`
	SpotsAdopted      int `json:"spotsAdopted"`
	MarketplaceSales  int `json:"marketplaceSales"`
	CleanupSessions   int `json:"cleanupSessions"`
	CycleTokensEarned int `json:"cycleTokensEarned"`
}

// User represents a GreenCycle account with its gamification state.
type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	PasswordHash  string    `json:"-"`
	Roles         []string  `json:"roles,omitempty"`
	WalletAddress *string   `json:"walletAddress,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	ActivityCounters
	TotalScore int `json:"totalScore"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RegisterRequest is the API request body for creating an account.
type RegisterRequest struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Password      string  `json:"password"`
	WalletAddress *string `json:"walletAddress,omitempty"`
}

// UserResponse is the API response for a newly registered account.
type UserResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	WalletAddress *string   `json:"walletAddress,omitempty"`
	TotalScore    int       `json:"totalScore"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UpdateScoreRequest is the API request body for an explicit score update.
type UpdateScoreRequest struct {
	ActivityType string `json:"activityType"`
	Points       *int   `json:"points,omitempty"`
}

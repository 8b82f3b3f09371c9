package streaks

import (
	"time"

	"github.com/google/uuid"
)

// LogParams captures one daily posting log request.
type LogParams struct {
	UserID uuid.UUID
	Source string
}

// LogResult is returned after a successful daily log.
type LogResult struct {
	CurrentStreak int        `json:"currentStreak"`
	LongestStreak int        `json:"longestStreak"`
	TotalPosts    int        `json:"totalPosts"`
	LogDay        string     `json:"logDay"`
	MilestoneHit  *Milestone `json:"milestoneHit,omitempty"`
}

// TrialWarning nudges trial users about to lose their streak access.
type TrialWarning struct {
	Message     string    `json:"message"`
	TrialEndsAt time.Time `json:"trialEndsAt"`
	Expired     bool      `json:"expired"`
}

// StreakView is the full streak payload for GET /api/streak.
type StreakView struct {
	CurrentStreak  int           `json:"currentStreak"`
	LongestStreak  int           `json:"longestStreak"`
	TotalPosts     int           `json:"totalPosts"`
	HasPostedToday bool          `json:"hasPostedToday"`
	Earned         []Milestone   `json:"earnedMilestones"`
	Next           *Milestone    `json:"nextMilestone,omitempty"`
	Progress       float64       `json:"milestoneProgress"`
	TrialWarning   *TrialWarning `json:"trialWarning,omitempty"`
}

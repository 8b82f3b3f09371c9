package models

import (
	"time"

	"github.com/google/uuid"
)

// StreakRecord is the per-user streak counter. LastLoggedOn is a UTC date;
// hasPostedToday is derived from it at read time rather than stored.
type StreakRecord struct {
	UserID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CurrentStreak int        `gorm:"not null;default:0"`
	LongestStreak int        `gorm:"not null;default:0"`
	TotalPosts    int        `gorm:"not null;default:0"`
	LastLoggedOn  *time.Time `gorm:"type:date"`
	UpdatedAt     time.Time  `gorm:"type:timestamptz;default:now()"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// StylistProgress tracks one stylist's posts toward a salon challenge.
type StylistProgress struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SalonChallengeID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uniq_stylist_progress,priority:1"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uniq_stylist_progress,priority:2"`
	Progress         int        `gorm:"not null;default:0"`
	CompletedAt      *time.Time `gorm:"type:timestamptz"`
	UpdatedAt        time.Time  `gorm:"type:timestamptz;default:now()"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/danamoreau/strandly-backend/pkg/enums"
)

// SalonChallenge is a team posting goal assigned by the salon owner.
type SalonChallenge struct {
	ID            uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SalonID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	Title         string                `gorm:"type:text;not null"`
	Description   string                `gorm:"type:text;not null"`
	PostsRequired int                   `gorm:"not null"`
	StartsAt      time.Time             `gorm:"type:timestamptz;not null"`
	EndsAt        time.Time             `gorm:"type:timestamptz;not null"`
	Status        enums.ChallengeStatus `gorm:"type:challenge_status;not null;default:'active'"`
	CreatedAt     time.Time             `gorm:"type:timestamptz;default:now()"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/danamoreau/strandly-backend/pkg/enums"
)

// UserChallenge is one stylist's run at a challenge. Completed and abandoned
// are terminal; abandoning zeroes CompletedDays.
type UserChallenge struct {
	ID            uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:uniq_user_challenges_active,priority:1"`
	ChallengeID   uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:uniq_user_challenges_active,priority:2"`
	Status        enums.ChallengeStatus `gorm:"type:challenge_status;not null;default:'active'"`
	CompletedDays int                   `gorm:"not null;default:0"`
	StartedAt     time.Time             `gorm:"type:timestamptz;default:now()"`
	CompletedAt   *time.Time            `gorm:"type:timestamptz"`
	AbandonedAt   *time.Time            `gorm:"type:timestamptz"`
}

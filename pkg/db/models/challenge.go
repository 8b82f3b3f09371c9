package models

import (
	"time"

	"github.com/google/uuid"
)

// Challenge is a self-serve posting goal any stylist can join.
type Challenge struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text;not null"`
	TargetDays  int       `gorm:"not null"`
	RewardBadge string    `gorm:"type:text;not null"`
	Active      bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"type:timestamptz;default:now()"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account; profile data lives in UserProfile.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string     `gorm:"type:citext;not null;unique"`
	PasswordHash string     `gorm:"type:text;not null"`
	DisplayName  string     `gorm:"type:text;not null"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;default:now()"`
	LastLoginAt  *time.Time `gorm:"type:timestamptz"`
}

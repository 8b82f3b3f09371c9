package models

import (
	"time"

	"github.com/google/uuid"
)

// Salon groups an owner and invited stylists under a seat limit. SeatCount
// tracks accepted members only; pending invitations do not hold a seat.
type Salon struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:text;not null"`
	SeatLimit   int       `gorm:"not null;default:5"`
	SeatCount   int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"type:timestamptz;default:now()"`
}

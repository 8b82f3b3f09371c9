package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/danamoreau/strandly-backend/pkg/enums"
)

// SalonMember doubles as the invitation row: UserID stays nil until the
// token-based join consumes the invite.
type SalonMember struct {
	ID               uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SalonID          uuid.UUID              `gorm:"type:uuid;not null;index"`
	UserID           *uuid.UUID             `gorm:"type:uuid;index"`
	Email            string                 `gorm:"type:citext;not null"`
	Role             enums.SalonRole        `gorm:"type:salon_role;not null;default:'stylist'"`
	InvitationStatus enums.InvitationStatus `gorm:"type:invitation_status;not null;default:'pending'"`
	InviteToken      string                 `gorm:"type:text;not null;unique"`
	InvitedAt        time.Time              `gorm:"type:timestamptz;default:now()"`
	AcceptedAt       *time.Time             `gorm:"type:timestamptz"`
	RevokedAt        *time.Time             `gorm:"type:timestamptz"`
}

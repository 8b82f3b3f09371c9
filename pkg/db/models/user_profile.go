package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/danamoreau/strandly-backend/pkg/enums"
)

// UserProfile holds the stylist's content preferences. PostingServices is kept
// a subset of OfferedServices by the profiles service on every write.
type UserProfile struct {
	UserID             uuid.UUID        `gorm:"type:uuid;primaryKey"`
	City               string           `gorm:"type:text"`
	CertifiedBrands    pq.StringArray   `gorm:"type:text[]"`
	ExtensionMethods   pq.StringArray   `gorm:"type:text[]"`
	OfferedServices    pq.StringArray   `gorm:"type:text[]"`
	PostingServices    pq.StringArray   `gorm:"type:text[]"`
	Voice              enums.Voice      `gorm:"type:voice;default:'solo_stylist'"`
	Tone               enums.Tone       `gorm:"type:tone;default:'neutral'"`
	PostingGoal        int              `gorm:"not null;default:3"`
	SalonID            *uuid.UUID       `gorm:"type:uuid;index"`
	SalonRole          *enums.SalonRole `gorm:"type:salon_role"`
	OnboardingComplete bool             `gorm:"not null;default:false"`
	CreatedAt          time.Time        `gorm:"type:timestamptz;default:now()"`
	UpdatedAt          time.Time        `gorm:"type:timestamptz;default:now()"`
}

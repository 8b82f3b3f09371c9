package models

import (
	"time"

	"github.com/google/uuid"
)

// GuestCheckout tracks an email-only Stripe checkout until the webhook
// confirms payment and the buyer claims the account.
type GuestCheckout struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email           string     `gorm:"type:citext;not null;index"`
	StripeSessionID string     `gorm:"type:text;not null;unique"`
	Completed       bool       `gorm:"not null;default:false"`
	CompletedAt     *time.Time `gorm:"type:timestamptz"`
	CreatedAt       time.Time  `gorm:"type:timestamptz;default:now()"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/danamoreau/strandly-backend/pkg/enums"
)

// Subscription persists Stripe subscription state per user. FreeAccessEndsAt
// covers promo grants that open the default two-month window without billing.
type Subscription struct {
	ID                   uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID               uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex"`
	StripeCustomerID     *string                  `gorm:"type:text;index"`
	StripeSubscriptionID *string                  `gorm:"type:text;unique"`
	Status               enums.SubscriptionStatus `gorm:"type:subscription_status;not null;default:'none'"`
	TrialEndsAt          *time.Time               `gorm:"type:timestamptz"`
	FreeAccessEndsAt     *time.Time               `gorm:"type:timestamptz"`
	CurrentPeriodEnd     *time.Time               `gorm:"type:timestamptz"`
	CreatedAt            time.Time                `gorm:"type:timestamptz;default:now()"`
	UpdatedAt            time.Time                `gorm:"type:timestamptz;default:now()"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// InstagramConnection stores the connection state this service is asked about;
// the OAuth exchange itself happens in the external integration.
type InstagramConnection struct {
	UserID       uuid.UUID  `gorm:"type:uuid;primaryKey"`
	IGUserID     *string    `gorm:"type:text"`
	Username     *string    `gorm:"type:text"`
	Connected    bool       `gorm:"not null;default:false"`
	ConnectedAt  *time.Time `gorm:"type:timestamptz"`
	LastSyncedAt *time.Time `gorm:"type:timestamptz"`
	UpdatedAt    time.Time  `gorm:"type:timestamptz;default:now()"`
}

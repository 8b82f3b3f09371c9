package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyPostLog records one logged post per user per UTC day. The unique index
// is what makes the daily log idempotent under concurrent requests.
type DailyPostLog struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_daily_post_logs_user_day,priority:1"`
	LogDay    time.Time `gorm:"type:date;not null;uniqueIndex:uniq_daily_post_logs_user_day,priority:2"`
	Source    string    `gorm:"type:text;not null;default:'web'"`
	CreatedAt time.Time `gorm:"type:timestamptz;default:now()"`
}

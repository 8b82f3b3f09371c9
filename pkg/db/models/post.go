package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/danamoreau/strandly-backend/pkg/enums"
)

// Post is an immutable calendar suggestion keyed by month/day. Rows are seeded
// by the content workflow; the API never mutates them.
type Post struct {
	ID                  uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Month               int                    `gorm:"not null;index:idx_posts_month_day,priority:1"`
	Day                 int                    `gorm:"not null;index:idx_posts_month_day,priority:2"`
	Title               string                 `gorm:"type:text;not null"`
	Description         string                 `gorm:"type:text;not null"`
	Category            enums.PostCategory     `gorm:"type:post_category;not null"`
	ContentType         enums.ContentType      `gorm:"type:content_type;not null"`
	Hashtags            pq.StringArray         `gorm:"type:text[]"`
	ServiceCategory     *enums.ServiceCategory `gorm:"type:service_category"`
	InstagramExampleURL *string                `gorm:"type:text"`
	VideoExampleURL     *string                `gorm:"type:text"`
	CreatedAt           time.Time              `gorm:"type:timestamptz;default:now()"`
}

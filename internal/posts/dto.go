package posts

import (
	"github.com/google/uuid"

	"github.com/danamoreau/strandly-backend/internal/calendar"
	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
)

// MonthViewParams carries the month selection plus the caller's facets.
// A nil UserID means the request is anonymous.
type MonthViewParams struct {
	Month        int
	UserID       *uuid.UUID
	Categories   []enums.PostCategory
	ContentTypes []enums.ContentType
}

// DayCell is the server-computed grid summary for one day: the first visible
// post plus how many more the day holds.
type DayCell struct {
	Day      int          `json:"day"`
	Post     *models.Post `json:"post,omitempty"`
	Overflow int          `json:"overflow"`
}

// MonthViewResult is the calendar month payload shared by web and mobile.
type MonthViewResult struct {
	Month            int                  `json:"month"`
	MonthName        string               `json:"monthName"`
	AccessibleMonths []int                `json:"accessibleMonths"`
	Locked           bool                 `json:"locked"`
	LockedCopy       *calendar.LockedCopy `json:"lockedCopy,omitempty"`
	Posts            []models.Post        `json:"posts"`
	Days             []DayCell            `json:"days"`
}

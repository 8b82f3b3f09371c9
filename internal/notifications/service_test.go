package notifications

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
	"github.com/danamoreau/strandly-backend/pkg/pagination"
)

type fakeRepo struct {
	rows []*models.Notification
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	f.rows = append(f.rows, notification)
	return nil
}

func (f *fakeRepo) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	var matched []models.Notification
	for _, row := range f.rows {
		if row.UserID != params.UserID {
			continue
		}
		if params.UnreadOnly && row.ReadAt != nil {
			continue
		}
		matched = append(matched, *row)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	normalized := params.Limit - 1
	if len(matched) > normalized {
		next := matched[normalized]
		return matched[:normalized], &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return matched, nil, nil
}

func (f *fakeRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	for _, row := range f.rows {
		if row.ID == notificationID && row.UserID == userID {
			if row.ReadAt == nil {
				row.ReadAt = &now
				return notificationMarkResult{Updated: true, Found: true}, nil
			}
			return notificationMarkResult{Found: true}, nil
		}
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	var n int64
	for _, row := range f.rows {
		if row.UserID == userID && row.ReadAt == nil {
			row.ReadAt = &now
			n++
		}
	}
	return n, nil
}

func seedNotifications(repo *fakeRepo, userID uuid.UUID, count int) {
	base := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		repo.rows = append(repo.rows, &models.Notification{
			ID:        uuid.New(),
			UserID:    userID,
			Title:     "Streak milestone reached",
			Message:   "keep going",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
}

func TestListPaginatesWithCursor(t *testing.T) {
	repo := &fakeRepo{}
	userID := uuid.New()
	seedNotifications(repo, userID, 3)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	page, err := svc.List(context.Background(), ListParams{UserID: userID, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 2 || page.Cursor == "" {
		t.Fatalf("expected 2 items and a cursor, got %d %q", len(page.Items), page.Cursor)
	}

	rest, err := svc.List(context.Background(), ListParams{UserID: userID, Limit: 2, Cursor: page.Cursor})
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if rest.Cursor == page.Cursor {
		t.Fatalf("cursor should advance")
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	svc, _ := NewService(&fakeRepo{})

	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "not-base64!"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestMarkReadScopedToUser(t *testing.T) {
	repo := &fakeRepo{}
	owner := uuid.New()
	seedNotifications(repo, owner, 1)
	svc, _ := NewService(repo)

	err := svc.MarkRead(context.Background(), uuid.New(), repo.rows[0].ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for foreign user, got %v", err)
	}

	if err := svc.MarkRead(context.Background(), owner, repo.rows[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if repo.rows[0].ReadAt == nil {
		t.Fatalf("notification not marked read")
	}
}

func TestMarkAllRead(t *testing.T) {
	repo := &fakeRepo{}
	userID := uuid.New()
	seedNotifications(repo, userID, 3)
	svc, _ := NewService(repo)

	n, err := svc.MarkAllRead(context.Background(), userID)
	if err != nil || n != 3 {
		t.Fatalf("expected 3 marked, got %d %v", n, err)
	}
	n, err = svc.MarkAllRead(context.Background(), userID)
	if err != nil || n != 0 {
		t.Fatalf("second pass should mark none, got %d %v", n, err)
	}
}

package posts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/danamoreau/strandly-backend/internal/calendar"
	"github.com/danamoreau/strandly-backend/pkg/db/models"
	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
)

// AccessResolver resolves the entitlement snapshot for a user. A nil userID
// resolves the anonymous default.
type AccessResolver interface {
	Resolve(ctx context.Context, userID *uuid.UUID) (*calendar.AccessStatus, error)
}

// ProfileLookup surfaces the posting services used for service gating.
type ProfileLookup interface {
	PostingServices(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// Service exposes the post catalog and the gated month view.
type Service interface {
	ListAll(ctx context.Context) ([]models.Post, error)
	MonthView(ctx context.Context, params MonthViewParams) (*MonthViewResult, error)
}

// ServiceParams wires the posts service dependencies.
type ServiceParams struct {
	Repo     Repository
	Access   AccessResolver
	Profiles ProfileLookup
	Now      func() time.Time
}

type service struct {
	repo     Repository
	access   AccessResolver
	profiles ProfileLookup
	now      func() time.Time
}

// NewService validates dependencies and returns the posts service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "posts repository required")
	}
	if params.Access == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "access resolver required")
	}
	if params.Profiles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "profile lookup required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		access:   params.Access,
		profiles: params.Profiles,
		now:      now,
	}, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.Post, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list posts")
	}
	return rows, nil
}

func (s *service) MonthView(ctx context.Context, params MonthViewParams) (*MonthViewResult, error) {
	if params.Month < 1 || params.Month > 12 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "month must be between 1 and 12")
	}

	now := s.now().UTC()

	var status *calendar.AccessStatus
	if params.UserID != nil {
		resolved, err := s.access.Resolve(ctx, params.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve access status")
		}
		status = resolved
	}
	accessible := calendar.AccessibleMonths(status, now)

	result := &MonthViewResult{
		Month:            params.Month,
		MonthName:        calendar.MonthName(params.Month),
		AccessibleMonths: accessible,
		Posts:            []models.Post{},
		Days:             []DayCell{},
	}

	if !calendar.IsMonthAccessible(params.Month, accessible) {
		copyVariant := calendar.LockedMonthCopy(params.Month, params.UserID == nil)
		result.Locked = true
		result.LockedCopy = &copyVariant
		return result, nil
	}

	rows, err := s.repo.ListByMonth(ctx, params.Month)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list posts by month")
	}

	var services []string
	if params.UserID != nil {
		services, err = s.profiles.PostingServices(ctx, *params.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load posting services")
		}
	}

	filtered := ApplyFilter(rows, Filter{
		Month:           params.Month,
		Categories:      params.Categories,
		ContentTypes:    params.ContentTypes,
		PostingServices: services,
	}, now)

	result.Posts = filtered
	result.Days = buildDayCells(filtered)
	return result, nil
}

// buildDayCells collapses the filtered posts into per-day grid summaries,
// keeping the first post per day and counting the rest.
func buildDayCells(rows []models.Post) []DayCell {
	cells := []DayCell{}
	index := map[int]int{}
	for i := range rows {
		day := rows[i].Day
		if pos, ok := index[day]; ok {
			cells[pos].Overflow++
			continue
		}
		index[day] = len(cells)
		post := rows[i]
		cells = append(cells, DayCell{Day: day, Post: &post})
	}
	return cells
}

package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
	"github.com/danamoreau/strandly-backend/pkg/logger"
	"github.com/danamoreau/strandly-backend/pkg/outbox"
)

const defaultTrialWarnDays = 3

type subscriptionLister interface {
	ListTrialsEndingBefore(ctx context.Context, cutoff time.Time) ([]models.Subscription, error)
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// TrialExpiryJobParams configures the trial warning job.
type TrialExpiryJobParams struct {
	Logger         *logger.Logger
	DB             txRunner
	Subscriptions  subscriptionLister
	Outbox         outboxEmitter
	WarnWithinDays int
}

// NewTrialExpiryJob constructs the trial expiry warning cron job.
func NewTrialExpiryJob(params TrialExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	warnDays := params.WarnWithinDays
	if warnDays <= 0 {
		warnDays = defaultTrialWarnDays
	}
	return &trialExpiryJob{
		logg:     params.Logger,
		db:       params.DB,
		subs:     params.Subscriptions,
		outbox:   params.Outbox,
		warnDays: warnDays,
		now:      time.Now,
	}, nil
}

type trialExpiryJob struct {
	logg     *logger.Logger
	db       txRunner
	subs     subscriptionLister
	outbox   outboxEmitter
	warnDays int
	now      func() time.Time
}

func (j *trialExpiryJob) Name() string { return "trial-expiry" }

// Run queues a warning event for each trial ending within the warn window.
// EmitIfNotExists keeps each subscription to a single warning even though the
// job runs on every cycle.
func (j *trialExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.Add(time.Duration(j.warnDays) * 24 * time.Hour)
	subs, err := j.subs.ListTrialsEndingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query expiring trials: %w", err)
	}
	count := 0
	var errs []error
	for _, sub := range subs {
		if sub.TrialEndsAt == nil || sub.TrialEndsAt.Before(now) {
			continue
		}
		daysLeft := daysUntil(now, *sub.TrialEndsAt)
		event := outbox.DomainEvent{
			EventType:     enums.EventTrialExpiringSoon,
			AggregateType: enums.AggregateSubscription,
			AggregateID:   sub.ID,
			Data: TrialExpiringSoonEvent{
				UserID:   sub.UserID,
				DaysLeft: daysLeft,
			},
			Version:    1,
			OccurredAt: now,
		}
		if err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			return j.outbox.EmitIfNotExists(ctx, tx, event)
		}); err != nil {
			errs = append(errs, fmt.Errorf("queue trial warning %s: %w", sub.ID, err))
			continue
		}
		count++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "trial warning loop complete")
	return multierr.Combine(errs...)
}

func daysUntil(now, deadline time.Time) int {
	remaining := deadline.Sub(now)
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// TrialExpiringSoonEvent describes the payload for the trial warning.
type TrialExpiringSoonEvent struct {
	UserID   uuid.UUID `json:"userId"`
	DaysLeft int       `json:"daysLeft"`
}

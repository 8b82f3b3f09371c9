package streaks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/danamoreau/strandly-backend/pkg/db"
	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
	"github.com/danamoreau/strandly-backend/pkg/outbox"
)

const (
	SourceWeb    = "web"
	SourceMobile = "mobile"
)

// TrialLookup resolves the trial end for the upsell warning. Nil means the
// user is not on a trial.
type TrialLookup interface {
	TrialEndsAt(ctx context.Context, userID uuid.UUID) (*time.Time, error)
}

// TxRunner runs fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EventEmitter appends domain events inside the surrounding transaction.
type EventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service owns the streak counters and the once-per-day log.
type Service interface {
	Log(ctx context.Context, params LogParams) (*LogResult, error)
	Get(ctx context.Context, userID uuid.UUID) (*StreakView, error)
	ResetExpired(ctx context.Context, now time.Time) (int64, error)
}

// ServiceParams wires the streaks service dependencies.
type ServiceParams struct {
	DB             TxRunner
	Repo           Repository
	Outbox         EventEmitter
	Trials         TrialLookup
	WarnWithinDays int
	Now            func() time.Time
}

type service struct {
	db             TxRunner
	repo           Repository
	outbox         EventEmitter
	trials         TrialLookup
	warnWithinDays int
	now            func() time.Time
}

// NewService validates dependencies and returns the streaks service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "streaks repository required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	warn := params.WarnWithinDays
	if warn <= 0 {
		warn = 3
	}
	return &service{
		db:             params.DB,
		repo:           params.Repo,
		outbox:         params.Outbox,
		trials:         params.Trials,
		warnWithinDays: warn,
		now:            now,
	}, nil
}

func (s *service) Log(ctx context.Context, params LogParams) (*LogResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	source := params.Source
	if source != SourceMobile {
		source = SourceWeb
	}

	today := utcDate(s.now())
	var result *LogResult

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.GetRecord(ctx, params.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load streak record")
		}
		if record == nil {
			record = &models.StreakRecord{UserID: params.UserID}
		}
		if record.LastLoggedOn != nil && sameDay(*record.LastLoggedOn, today) {
			return pkgerrors.New(pkgerrors.CodeAlreadyLogged, "post already logged today")
		}

		logRow := &models.DailyPostLog{
			UserID: params.UserID,
			LogDay: today,
			Source: source,
		}
		if err := repo.InsertLog(ctx, logRow); err != nil {
			// concurrent double-log loses on the unique index
			if dbpkg.IsUniqueViolation(err, "uniq_daily_post_logs_user_day") {
				return pkgerrors.New(pkgerrors.CodeAlreadyLogged, "post already logged today")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert daily log")
		}

		if record.LastLoggedOn != nil && sameDay(*record.LastLoggedOn, today.AddDate(0, 0, -1)) {
			record.CurrentStreak++
		} else {
			record.CurrentStreak = 1
		}
		record.TotalPosts++
		if record.CurrentStreak > record.LongestStreak {
			record.LongestStreak = record.CurrentStreak
		}
		logged := today
		record.LastLoggedOn = &logged
		record.UpdatedAt = s.now().UTC()

		if err := repo.SaveRecord(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save streak record")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventStreakLogged,
			AggregateType: enums.AggregateStreak,
			AggregateID:   params.UserID,
			Actor:         &outbox.ActorRef{UserID: params.UserID},
			Data: map[string]any{
				"userId":        params.UserID.String(),
				"logDay":        today.Format(time.DateOnly),
				"source":        source,
				"currentStreak": record.CurrentStreak,
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit streak event")
		}

		hit := milestoneAt(record.CurrentStreak)
		if hit != nil {
			milestoneEvent := outbox.DomainEvent{
				EventType:     enums.EventStreakMilestoneReached,
				AggregateType: enums.AggregateStreak,
				AggregateID:   params.UserID,
				Actor:         &outbox.ActorRef{UserID: params.UserID},
				Data: map[string]any{
					"userId":    params.UserID.String(),
					"days":      hit.Days,
					"milestone": hit.Name,
				},
				Version: 1,
			}
			if err := s.outbox.Emit(ctx, tx, milestoneEvent); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit milestone event")
			}
		}

		result = &LogResult{
			CurrentStreak: record.CurrentStreak,
			LongestStreak: record.LongestStreak,
			TotalPosts:    record.TotalPosts,
			LogDay:        today.Format(time.DateOnly),
			MilestoneHit:  hit,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*StreakView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	record, err := s.repo.GetRecord(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load streak record")
	}
	if record == nil {
		record = &models.StreakRecord{UserID: userID}
	}

	now := s.now().UTC()
	today := utcDate(now)

	view := &StreakView{
		CurrentStreak:  record.CurrentStreak,
		LongestStreak:  record.LongestStreak,
		TotalPosts:     record.TotalPosts,
		HasPostedToday: record.LastLoggedOn != nil && sameDay(*record.LastLoggedOn, today),
		Earned:         EarnedMilestones(record.CurrentStreak),
		Next:           NextMilestone(record.CurrentStreak),
		Progress:       MilestoneProgress(record.CurrentStreak),
	}

	if s.trials != nil && record.CurrentStreak > 0 {
		trialEnd, err := s.trials.TrialEndsAt(ctx, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trial end")
		}
		if trialEnd != nil {
			warnFrom := trialEnd.Add(-time.Duration(s.warnWithinDays) * 24 * time.Hour)
			if !now.Before(warnFrom) {
				expired := now.After(*trialEnd)
				message := "Your trial ends soon. Upgrade to keep your streak going."
				if expired {
					message = "Your trial has ended. Upgrade to keep your streak going."
				}
				view.TrialWarning = &TrialWarning{
					Message:     message,
					TrialEndsAt: trialEnd.UTC(),
					Expired:     expired,
				}
			}
		}
	}

	return view, nil
}

// ResetExpired zeroes streaks whose latest log predates yesterday (UTC). The
// nightly cron job runs this just after midnight.
func (s *service) ResetExpired(ctx context.Context, now time.Time) (int64, error) {
	yesterday := utcDate(now).AddDate(0, 0, -1)
	count, err := s.repo.ResetExpired(ctx, yesterday)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset expired streaks")
	}
	return count, nil
}

func utcDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

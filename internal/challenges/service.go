package challenges

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

// TxRunner runs fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EventEmitter appends domain events inside the surrounding transaction.
type EventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service owns the self-serve challenge lifecycle: join, progress, abandon.
type Service interface {
	ListCatalog(ctx context.Context) ([]models.Challenge, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]UserChallengeDetail, error)
	Join(ctx context.Context, userID, challengeID uuid.UUID) (*models.UserChallenge, error)
	Progress(ctx context.Context, userID, runID uuid.UUID) (*models.UserChallenge, error)
	Abandon(ctx context.Context, userID, runID uuid.UUID) (*models.UserChallenge, error)
}

// ServiceParams wires the challenges service dependencies.
type ServiceParams struct {
	DB     TxRunner
	Repo   Repository
	Outbox EventEmitter
	Now    func() time.Time
}

type service struct {
	db     TxRunner
	repo   Repository
	outbox EventEmitter
	now    func() time.Time
}

// NewService validates dependencies and returns the challenges service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "challenges repository required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{db: params.DB, repo: params.Repo, outbox: params.Outbox, now: now}, nil
}

func (s *service) ListCatalog(ctx context.Context) ([]models.Challenge, error) {
	rows, err := s.repo.ListActiveCatalog(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list challenge catalog")
	}
	return rows, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]UserChallengeDetail, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user challenges")
	}
	return rows, nil
}

func (s *service) Join(ctx context.Context, userID, challengeID uuid.UUID) (*models.UserChallenge, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if challengeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "challenge id required")
	}

	challenge, err := s.repo.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load challenge")
	}
	if challenge == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "challenge not found")
	}
	if !challenge.Active {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "challenge is not open for joining")
	}

	existing, err := s.repo.FindActiveRun(ctx, userID, challengeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active run")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "challenge already joined")
	}

	run := &models.UserChallenge{
		UserID:      userID,
		ChallengeID: challengeID,
		Status:      enums.ChallengeStatusActive,
		StartedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		if dbpkg.IsUniqueViolation(err, "uniq_user_challenges_active") {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "challenge already joined")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create challenge run")
	}
	return run, nil
}

func (s *service) Progress(ctx context.Context, userID, runID uuid.UUID) (*models.UserChallenge, error) {
	if userID == uuid.Nil || runID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and run id required")
	}

	var updated *models.UserChallenge
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		run, err := repo.GetRun(ctx, runID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load challenge run")
		}
		if run == nil || run.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "challenge run not found")
		}
		if run.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "challenge run is no longer active")
		}

		challenge, err := repo.GetChallenge(ctx, run.ChallengeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load challenge")
		}
		if challenge == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "challenge not found")
		}

		run.CompletedDays++
		if run.CompletedDays >= challenge.TargetDays {
			now := s.now().UTC()
			run.Status = enums.ChallengeStatusCompleted
			run.CompletedAt = &now

			event := outbox.DomainEvent{
				EventType:     enums.EventChallengeCompleted,
				AggregateType: enums.AggregateChallenge,
				AggregateID:   run.ID,
				Actor:         &outbox.ActorRef{UserID: userID},
				Data: map[string]any{
					"userId":      userID.String(),
					"challengeId": run.ChallengeID.String(),
					"title":       challenge.Title,
					"rewardBadge": challenge.RewardBadge,
				},
				Version: 1,
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit challenge event")
			}
		}

		if err := repo.SaveRun(ctx, run); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save challenge run")
		}
		updated = run
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Abandon is explicit and destructive: progress is zeroed and the run can
// never be reactivated.
func (s *service) Abandon(ctx context.Context, userID, runID uuid.UUID) (*models.UserChallenge, error) {
	if userID == uuid.Nil || runID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and run id required")
	}

	run, err := s.repo.GetRun(ctx, runID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load challenge run")
	}
	if run == nil || run.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "challenge run not found")
	}
	if run.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "challenge run is no longer active")
	}

	now := s.now().UTC()
	run.Status = enums.ChallengeStatusAbandoned
	run.CompletedDays = 0
	run.AbandonedAt = &now

	if err := s.repo.SaveRun(ctx, run); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save challenge run")
	}
	return run, nil
}

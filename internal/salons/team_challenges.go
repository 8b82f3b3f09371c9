package salons

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
	"github.com/danamoreau/strandly-backend/pkg/outbox"
)

func (s *service) CreateTeamChallenge(ctx context.Context, ownerID uuid.UUID, params TeamChallengeParams) (*TeamChallengeView, error) {
	salon, err := s.requireOwnedSalon(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := validateTeamChallenge(params); err != nil {
		return nil, err
	}

	challenge := &models.SalonChallenge{
		SalonID:       salon.ID,
		Title:         strings.TrimSpace(params.Title),
		Description:   strings.TrimSpace(params.Description),
		PostsRequired: params.PostsRequired,
		StartsAt:      params.StartsAt.UTC(),
		EndsAt:        params.EndsAt.UTC(),
		Status:        enums.ChallengeStatusActive,
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateSalonChallenge(ctx, challenge); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTeamChallengeAssigned,
			AggregateType: enums.AggregateSalon,
			AggregateID:   salon.ID,
			Actor:         &outbox.ActorRef{UserID: ownerID, SalonID: &salon.ID, Role: string(enums.SalonRoleOwner)},
			Data: map[string]any{
				"salonId":     salon.ID.String(),
				"challengeId": challenge.ID.String(),
				"title":       challenge.Title,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create team challenge")
	}
	return s.teamChallengeView(ctx, challenge)
}

func (s *service) ListTeamChallenges(ctx context.Context, userID uuid.UUID) ([]TeamChallengeView, error) {
	salon, _, err := s.salonForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	challenges, err := s.repo.ListSalonChallenges(ctx, salon.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list team challenges")
	}
	views := make([]TeamChallengeView, 0, len(challenges))
	for i := range challenges {
		view, err := s.teamChallengeView(ctx, &challenges[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *service) UpdateTeamChallenge(ctx context.Context, ownerID, challengeID uuid.UUID, params TeamChallengeParams) (*TeamChallengeView, error) {
	salon, err := s.requireOwnedSalon(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	challenge, err := s.ownedChallenge(ctx, salon.ID, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "challenge is finished")
	}
	if err := validateTeamChallenge(params); err != nil {
		return nil, err
	}

	challenge.Title = strings.TrimSpace(params.Title)
	challenge.Description = strings.TrimSpace(params.Description)
	challenge.PostsRequired = params.PostsRequired
	challenge.StartsAt = params.StartsAt.UTC()
	challenge.EndsAt = params.EndsAt.UTC()
	if err := s.repo.SaveSalonChallenge(ctx, challenge); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update team challenge")
	}
	return s.teamChallengeView(ctx, challenge)
}

func (s *service) DeleteTeamChallenge(ctx context.Context, ownerID, challengeID uuid.UUID) error {
	salon, err := s.requireOwnedSalon(ctx, ownerID)
	if err != nil {
		return err
	}
	if _, err := s.ownedChallenge(ctx, salon.ID, challengeID); err != nil {
		return err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteSalonChallenge(ctx, challengeID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete team challenge")
	}
	return nil
}

func (s *service) LogTeamProgress(ctx context.Context, userID, challengeID uuid.UUID) (*StylistProgressView, error) {
	salon, _, err := s.salonForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	challenge, err := s.ownedChallenge(ctx, salon.ID, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "challenge is finished")
	}
	now := s.now().UTC()
	if now.Before(challenge.StartsAt) || now.After(challenge.EndsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "challenge is not running")
	}

	var row *models.StylistProgress
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		row, err = repo.GetStylistProgress(ctx, challengeID, userID)
		if err != nil {
			return err
		}
		if row == nil {
			row = &models.StylistProgress{
				SalonChallengeID: challengeID,
				UserID:           userID,
			}
		}
		if row.CompletedAt != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "challenge already completed")
		}

		row.Progress++
		row.UpdatedAt = now
		if row.Progress >= challenge.PostsRequired {
			row.CompletedAt = &now
		}
		if row.ID == uuid.Nil {
			return repo.CreateStylistProgress(ctx, row)
		}
		return repo.SaveStylistProgress(ctx, row)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "log team progress")
	}

	return &StylistProgressView{
		UserID:      userID,
		Progress:    row.Progress,
		Completed:   row.CompletedAt != nil,
		CompletedAt: row.CompletedAt,
	}, nil
}

func (s *service) ownedChallenge(ctx context.Context, salonID, challengeID uuid.UUID) (*models.SalonChallenge, error) {
	challenge, err := s.repo.GetSalonChallenge(ctx, challengeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load team challenge")
	}
	if challenge == nil || challenge.SalonID != salonID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "team challenge not found")
	}
	return challenge, nil
}

func (s *service) teamChallengeView(ctx context.Context, challenge *models.SalonChallenge) (*TeamChallengeView, error) {
	rows, err := s.repo.ListStylistProgress(ctx, challenge.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list challenge progress")
	}

	view := &TeamChallengeView{
		ID:            challenge.ID,
		Title:         challenge.Title,
		Description:   challenge.Description,
		PostsRequired: challenge.PostsRequired,
		StartsAt:      challenge.StartsAt,
		EndsAt:        challenge.EndsAt,
		Status:        challenge.Status,
		Progress:      make([]StylistProgressView, 0, len(rows)),
	}
	for _, row := range rows {
		view.Progress = append(view.Progress, StylistProgressView{
			UserID:      row.UserID,
			Progress:    row.Progress,
			Completed:   row.CompletedAt != nil,
			CompletedAt: row.CompletedAt,
		})
	}
	return view, nil
}

func validateTeamChallenge(params TeamChallengeParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if params.PostsRequired < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "posts required must be positive")
	}
	if !params.EndsAt.After(params.StartsAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "challenge must end after it starts")
	}
	return nil
}

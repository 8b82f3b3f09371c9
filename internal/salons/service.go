package salons

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
	"github.com/danamoreau/strandly-backend/pkg/outbox"
	"github.com/danamoreau/strandly-backend/pkg/security"
)

const (
	defaultSeatLimit     = 5
	maxSeatLimit         = 50
	inviteTokenLength    = 32
	defaultInviteTTLDays = 14
)

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EventEmitter records a domain event inside the caller's transaction.
type EventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service owns salon teams, seat accounting and team challenges.
type Service interface {
	CreateSalon(ctx context.Context, ownerID uuid.UUID, params CreateSalonParams) (*TeamView, error)
	GetTeam(ctx context.Context, userID uuid.UUID) (*TeamView, error)
	Invite(ctx context.Context, ownerID uuid.UUID, email string, role enums.SalonRole) (*Invitation, error)
	AcceptInvite(ctx context.Context, userID uuid.UUID, token string) (*TeamView, error)
	RevokeInvite(ctx context.Context, ownerID, memberID uuid.UUID) error
	ExpireStaleInvitations(ctx context.Context) (int64, error)

	CreateTeamChallenge(ctx context.Context, ownerID uuid.UUID, params TeamChallengeParams) (*TeamChallengeView, error)
	ListTeamChallenges(ctx context.Context, userID uuid.UUID) ([]TeamChallengeView, error)
	UpdateTeamChallenge(ctx context.Context, ownerID, challengeID uuid.UUID, params TeamChallengeParams) (*TeamChallengeView, error)
	DeleteTeamChallenge(ctx context.Context, ownerID, challengeID uuid.UUID) error
	LogTeamProgress(ctx context.Context, userID, challengeID uuid.UUID) (*StylistProgressView, error)
}

// ServiceParams lists the salon service dependencies.
type ServiceParams struct {
	DB            TxRunner
	Repo          Repository
	Outbox        EventEmitter
	InviteTTLDays int
	Now           func() time.Time
}

type service struct {
	db        TxRunner
	repo      Repository
	outbox    EventEmitter
	inviteTTL time.Duration
	now       func() time.Time
}

// NewService validates dependencies and returns the salons service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "salons repository required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox emitter required")
	}
	if params.InviteTTLDays <= 0 {
		params.InviteTTLDays = defaultInviteTTLDays
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		db:        params.DB,
		repo:      params.Repo,
		outbox:    params.Outbox,
		inviteTTL: time.Duration(params.InviteTTLDays) * 24 * time.Hour,
		now:       params.Now,
	}, nil
}

func (s *service) CreateSalon(ctx context.Context, ownerID uuid.UUID, params CreateSalonParams) (*TeamView, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "salon name required")
	}
	seatLimit := params.SeatLimit
	if seatLimit == 0 {
		seatLimit = defaultSeatLimit
	}
	if seatLimit < 1 || seatLimit > maxSeatLimit {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seat limit out of range")
	}

	existing, err := s.repo.GetSalonByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load salon")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "owner already has a salon")
	}

	salon := &models.Salon{
		OwnerUserID: ownerID,
		Name:        name,
		SeatLimit:   seatLimit,
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateSalon(ctx, salon); err != nil {
			return err
		}
		return repo.AttachProfileSalon(ctx, ownerID, salon.ID, enums.SalonRoleOwner)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create salon")
	}
	return s.teamView(ctx, salon)
}

func (s *service) GetTeam(ctx context.Context, userID uuid.UUID) (*TeamView, error) {
	salon, _, err := s.salonForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.teamView(ctx, salon)
}

func (s *service) Invite(ctx context.Context, ownerID uuid.UUID, email string, role enums.SalonRole) (*Invitation, error) {
	salon, err := s.requireOwnedSalon(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email required")
	}
	if !role.IsValid() || role == enums.SalonRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid member role")
	}

	existing, err := s.repo.FindMemberByEmail(ctx, salon.ID, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing invitation")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "email already invited")
	}

	token, err := security.GenerateInviteToken(inviteTokenLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate invite token")
	}

	member := &models.SalonMember{
		SalonID:          salon.ID,
		Email:            email,
		Role:             role,
		InvitationStatus: enums.InvitationStatusPending,
		InviteToken:      token,
		InvitedAt:        s.now().UTC(),
	}
	if err := s.repo.CreateMember(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invitation")
	}

	return &Invitation{
		MemberID:    member.ID,
		Email:       email,
		Role:        role,
		InviteToken: token,
		ExpiresAt:   member.InvitedAt.Add(s.inviteTTL),
	}, nil
}

func (s *service) AcceptInvite(ctx context.Context, userID uuid.UUID, token string) (*TeamView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invite token required")
	}

	member, err := s.repo.GetMemberByToken(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invitation")
	}
	if member == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invitation not found")
	}
	if member.InvitationStatus != enums.InvitationStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invitation is no longer open")
	}
	now := s.now().UTC()
	if member.InvitedAt.Add(s.inviteTTL).Before(now) {
		member.InvitationStatus = enums.InvitationStatusExpired
		if err := s.repo.SaveMember(ctx, member); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire invitation")
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invitation has expired")
	}

	var salon *models.Salon
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		salon, err = repo.GetSalon(ctx, member.SalonID)
		if err != nil {
			return err
		}
		if salon == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "salon not found")
		}
		if salon.SeatCount >= salon.SeatLimit {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "salon has no open seats")
		}

		member.UserID = &userID
		member.InvitationStatus = enums.InvitationStatusAccepted
		member.AcceptedAt = &now
		if err := repo.SaveMember(ctx, member); err != nil {
			return err
		}

		salon.SeatCount++
		if err := repo.SaveSalon(ctx, salon); err != nil {
			return err
		}
		if err := repo.AttachProfileSalon(ctx, userID, salon.ID, member.Role); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInvitationAccepted,
			AggregateType: enums.AggregateSalon,
			AggregateID:   salon.ID,
			Actor:         &outbox.ActorRef{UserID: userID, SalonID: &salon.ID},
			Data: map[string]any{
				"salonId":     salon.ID.String(),
				"ownerUserId": salon.OwnerUserID.String(),
				"email":       member.Email,
			},
			Version: 1,
		})
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept invitation")
	}
	return s.teamView(ctx, salon)
}

func (s *service) RevokeInvite(ctx context.Context, ownerID, memberID uuid.UUID) error {
	salon, err := s.requireOwnedSalon(ctx, ownerID)
	if err != nil {
		return err
	}

	member, err := s.repo.GetMember(ctx, memberID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	if member == nil || member.SalonID != salon.ID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}
	if member.InvitationStatus == enums.InvitationStatusRevoked {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "invitation already revoked")
	}

	wasAccepted := member.InvitationStatus == enums.InvitationStatusAccepted
	now := s.now().UTC()

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		member.InvitationStatus = enums.InvitationStatusRevoked
		member.RevokedAt = &now
		if err := repo.SaveMember(ctx, member); err != nil {
			return err
		}
		if !wasAccepted {
			return nil
		}

		// an accepted member frees their seat and leaves the salon
		current, err := repo.GetSalon(ctx, salon.ID)
		if err != nil {
			return err
		}
		if current.SeatCount > 0 {
			current.SeatCount--
		}
		if err := repo.SaveSalon(ctx, current); err != nil {
			return err
		}
		if member.UserID != nil {
			return repo.DetachProfileSalon(ctx, *member.UserID)
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke invitation")
	}
	return nil
}

func (s *service) ExpireStaleInvitations(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.inviteTTL)
	expired, err := s.repo.ExpirePendingBefore(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire invitations")
	}
	return expired, nil
}

func (s *service) requireOwnedSalon(ctx context.Context, ownerID uuid.UUID) (*models.Salon, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	salon, err := s.repo.GetSalonByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load salon")
	}
	if salon == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "salon owner role required")
	}
	return salon, nil
}

// salonForUser resolves the salon for an owner or an accepted member.
func (s *service) salonForUser(ctx context.Context, userID uuid.UUID) (*models.Salon, *models.SalonMember, error) {
	if userID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	salon, err := s.repo.GetSalonByOwner(ctx, userID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load salon")
	}
	if salon != nil {
		return salon, nil, nil
	}

	member, err := s.repo.FindMemberByUser(ctx, userID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	if member == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "no salon membership")
	}
	salon, err = s.repo.GetSalon(ctx, member.SalonID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load salon")
	}
	if salon == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "salon not found")
	}
	return salon, member, nil
}

func (s *service) teamView(ctx context.Context, salon *models.Salon) (*TeamView, error) {
	members, err := s.repo.ListMembers(ctx, salon.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}

	view := &TeamView{
		SalonID:   salon.ID,
		Name:      salon.Name,
		OwnerID:   salon.OwnerUserID,
		SeatLimit: salon.SeatLimit,
		SeatCount: salon.SeatCount,
		Members:   make([]MemberView, 0, len(members)),
	}
	for _, m := range members {
		view.Members = append(view.Members, MemberView{
			ID:         m.ID,
			UserID:     m.UserID,
			Email:      m.Email,
			Role:       m.Role,
			Status:     m.InvitationStatus,
			InvitedAt:  m.InvitedAt,
			AcceptedAt: m.AcceptedAt,
		})
	}
	return view, nil
}

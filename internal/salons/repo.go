package salons

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
)

// Repository exposes persistence for salons, invitations and team challenges.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetSalon(ctx context.Context, id uuid.UUID) (*models.Salon, error)
	GetSalonByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Salon, error)
	CreateSalon(ctx context.Context, salon *models.Salon) error
	SaveSalon(ctx context.Context, salon *models.Salon) error

	GetMember(ctx context.Context, id uuid.UUID) (*models.SalonMember, error)
	GetMemberByToken(ctx context.Context, token string) (*models.SalonMember, error)
	FindMemberByUser(ctx context.Context, userID uuid.UUID) (*models.SalonMember, error)
	FindMemberByEmail(ctx context.Context, salonID uuid.UUID, email string) (*models.SalonMember, error)
	ListMembers(ctx context.Context, salonID uuid.UUID) ([]models.SalonMember, error)
	CreateMember(ctx context.Context, member *models.SalonMember) error
	SaveMember(ctx context.Context, member *models.SalonMember) error
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)

	AttachProfileSalon(ctx context.Context, userID, salonID uuid.UUID, role enums.SalonRole) error
	DetachProfileSalon(ctx context.Context, userID uuid.UUID) error

	CreateSalonChallenge(ctx context.Context, challenge *models.SalonChallenge) error
	GetSalonChallenge(ctx context.Context, id uuid.UUID) (*models.SalonChallenge, error)
	ListSalonChallenges(ctx context.Context, salonID uuid.UUID) ([]models.SalonChallenge, error)
	SaveSalonChallenge(ctx context.Context, challenge *models.SalonChallenge) error
	DeleteSalonChallenge(ctx context.Context, id uuid.UUID) error

	GetStylistProgress(ctx context.Context, challengeID, userID uuid.UUID) (*models.StylistProgress, error)
	ListStylistProgress(ctx context.Context, challengeID uuid.UUID) ([]models.StylistProgress, error)
	CreateStylistProgress(ctx context.Context, row *models.StylistProgress) error
	SaveStylistProgress(ctx context.Context, row *models.StylistProgress) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a salons repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) GetSalon(ctx context.Context, id uuid.UUID) (*models.Salon, error) {
	var salon models.Salon
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&salon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &salon, nil
}

func (r *repositoryImpl) GetSalonByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Salon, error) {
	var salon models.Salon
	err := r.db.WithContext(ctx).Where("owner_user_id = ?", ownerUserID).First(&salon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &salon, nil
}

func (r *repositoryImpl) CreateSalon(ctx context.Context, salon *models.Salon) error {
	return r.db.WithContext(ctx).Create(salon).Error
}

func (r *repositoryImpl) SaveSalon(ctx context.Context, salon *models.Salon) error {
	return r.db.WithContext(ctx).Save(salon).Error
}

func (r *repositoryImpl) GetMember(ctx context.Context, id uuid.UUID) (*models.SalonMember, error) {
	var member models.SalonMember
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repositoryImpl) GetMemberByToken(ctx context.Context, token string) (*models.SalonMember, error) {
	var member models.SalonMember
	err := r.db.WithContext(ctx).Where("invite_token = ?", token).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repositoryImpl) FindMemberByUser(ctx context.Context, userID uuid.UUID) (*models.SalonMember, error) {
	var member models.SalonMember
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND invitation_status = ?", userID, enums.InvitationStatusAccepted).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repositoryImpl) FindMemberByEmail(ctx context.Context, salonID uuid.UUID, email string) (*models.SalonMember, error) {
	var member models.SalonMember
	err := r.db.WithContext(ctx).
		Where("salon_id = ? AND email = ? AND invitation_status IN ?", salonID, email,
			[]enums.InvitationStatus{enums.InvitationStatusPending, enums.InvitationStatusAccepted}).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repositoryImpl) ListMembers(ctx context.Context, salonID uuid.UUID) ([]models.SalonMember, error) {
	var members []models.SalonMember
	err := r.db.WithContext(ctx).
		Where("salon_id = ?", salonID).
		Order("invited_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repositoryImpl) CreateMember(ctx context.Context, member *models.SalonMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repositoryImpl) SaveMember(ctx context.Context, member *models.SalonMember) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *repositoryImpl) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SalonMember{}).
		Where("invitation_status = ? AND invited_at < ?", enums.InvitationStatusPending, cutoff).
		Update("invitation_status", enums.InvitationStatusExpired)
	return res.RowsAffected, res.Error
}

func (r *repositoryImpl) AttachProfileSalon(ctx context.Context, userID, salonID uuid.UUID, role enums.SalonRole) error {
	return r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"salon_id": salonID, "salon_role": role}).Error
}

func (r *repositoryImpl) DetachProfileSalon(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"salon_id": nil, "salon_role": nil}).Error
}

func (r *repositoryImpl) CreateSalonChallenge(ctx context.Context, challenge *models.SalonChallenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *repositoryImpl) GetSalonChallenge(ctx context.Context, id uuid.UUID) (*models.SalonChallenge, error) {
	var challenge models.SalonChallenge
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *repositoryImpl) ListSalonChallenges(ctx context.Context, salonID uuid.UUID) ([]models.SalonChallenge, error) {
	var challenges []models.SalonChallenge
	err := r.db.WithContext(ctx).
		Where("salon_id = ?", salonID).
		Order("starts_at DESC, id ASC").
		Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

func (r *repositoryImpl) SaveSalonChallenge(ctx context.Context, challenge *models.SalonChallenge) error {
	return r.db.WithContext(ctx).Save(challenge).Error
}

func (r *repositoryImpl) DeleteSalonChallenge(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("salon_challenge_id = ?", id).
		Delete(&models.StylistProgress{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.SalonChallenge{}).Error
}

func (r *repositoryImpl) GetStylistProgress(ctx context.Context, challengeID, userID uuid.UUID) (*models.StylistProgress, error) {
	var row models.StylistProgress
	err := r.db.WithContext(ctx).
		Where("salon_challenge_id = ? AND user_id = ?", challengeID, userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) ListStylistProgress(ctx context.Context, challengeID uuid.UUID) ([]models.StylistProgress, error) {
	var rows []models.StylistProgress
	err := r.db.WithContext(ctx).
		Where("salon_challenge_id = ?", challengeID).
		Order("progress DESC, updated_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) CreateStylistProgress(ctx context.Context, row *models.StylistProgress) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repositoryImpl) SaveStylistProgress(ctx context.Context, row *models.StylistProgress) error {
	return r.db.WithContext(ctx).Save(row).Error
}

package challenges

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
)

// UserChallengeDetail joins a run with its catalog entry.
type UserChallengeDetail struct {
	Run       models.UserChallenge `json:"run"`
	Challenge models.Challenge     `json:"challenge"`
}

// Repository exposes persistence for the challenge catalog and user runs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActiveCatalog(ctx context.Context) ([]models.Challenge, error)
	GetChallenge(ctx context.Context, id uuid.UUID) (*models.Challenge, error)
	GetRun(ctx context.Context, id uuid.UUID) (*models.UserChallenge, error)
	FindActiveRun(ctx context.Context, userID, challengeID uuid.UUID) (*models.UserChallenge, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]UserChallengeDetail, error)
	CreateRun(ctx context.Context, run *models.UserChallenge) error
	SaveRun(ctx context.Context, run *models.UserChallenge) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a challenges repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListActiveCatalog(ctx context.Context) ([]models.Challenge, error) {
	var rows []models.Challenge
	err := r.db.WithContext(ctx).
		Where("active = true").
		Order("target_days ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) GetChallenge(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	var row models.Challenge
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) GetRun(ctx context.Context, id uuid.UUID) (*models.UserChallenge, error) {
	var row models.UserChallenge
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) FindActiveRun(ctx context.Context, userID, challengeID uuid.UUID) (*models.UserChallenge, error) {
	var row models.UserChallenge
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ? AND status = ?", userID, challengeID, "active").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]UserChallengeDetail, error) {
	var runs []models.UserChallenge
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return []UserChallengeDetail{}, nil
	}

	ids := make([]uuid.UUID, 0, len(runs))
	for _, run := range runs {
		ids = append(ids, run.ChallengeID)
	}
	var catalog []models.Challenge
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&catalog).Error; err != nil {
		return nil, err
	}
	byID := map[uuid.UUID]models.Challenge{}
	for _, c := range catalog {
		byID[c.ID] = c
	}

	details := make([]UserChallengeDetail, 0, len(runs))
	for _, run := range runs {
		details = append(details, UserChallengeDetail{Run: run, Challenge: byID[run.ChallengeID]})
	}
	return details, nil
}

func (r *repositoryImpl) CreateRun(ctx context.Context, run *models.UserChallenge) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *repositoryImpl) SaveRun(ctx context.Context, run *models.UserChallenge) error {
	return r.db.WithContext(ctx).Save(run).Error
}

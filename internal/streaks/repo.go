package streaks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
)

// Repository exposes persistence for streak records and daily logs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetRecord(ctx context.Context, userID uuid.UUID) (*models.StreakRecord, error)
	SaveRecord(ctx context.Context, record *models.StreakRecord) error
	InsertLog(ctx context.Context, log *models.DailyPostLog) error
	CountLogsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error)
	ResetExpired(ctx context.Context, lastValidDay time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a streaks repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) GetRecord(ctx context.Context, userID uuid.UUID) (*models.StreakRecord, error) {
	var record models.StreakRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repositoryImpl) SaveRecord(ctx context.Context, record *models.StreakRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *repositoryImpl) InsertLog(ctx context.Context, log *models.DailyPostLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *repositoryImpl) CountLogsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DailyPostLog{}).
		Where("user_id = ? AND log_day >= ? AND log_day <= ?", userID, from, to).
		Count(&count).Error
	return count, err
}

// ResetExpired zeroes current_streak for users whose latest log predates the
// last valid day. Longest and total are untouched.
func (r *repositoryImpl) ResetExpired(ctx context.Context, lastValidDay time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StreakRecord{}).
		Where("current_streak > 0 AND (last_logged_on IS NULL OR last_logged_on < ?)", lastValidDay).
		Updates(map[string]any{
			"current_streak": 0,
			"updated_at":     time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

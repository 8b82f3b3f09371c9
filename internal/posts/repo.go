package posts

import (
	"context"

	"gorm.io/gorm"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
)

// Repository exposes read access to the seeded post catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListAll(ctx context.Context) ([]models.Post, error)
	ListByMonth(ctx context.Context, month int) ([]models.Post, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a posts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListAll(ctx context.Context) ([]models.Post, error) {
	var rows []models.Post
	err := r.db.WithContext(ctx).
		Order("month ASC, day ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) ListByMonth(ctx context.Context, month int) ([]models.Post, error) {
	var rows []models.Post
	err := r.db.WithContext(ctx).
		Where("month = ?", month).
		Order("day ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

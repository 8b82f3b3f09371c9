package instagram

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
)

// Repository exposes persistence for Instagram connection rows.
type Repository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.InstagramConnection, error)
	Save(ctx context.Context, conn *models.InstagramConnection) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an instagram repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Get(ctx context.Context, userID uuid.UUID) (*models.InstagramConnection, error) {
	var conn models.InstagramConnection
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *repositoryImpl) Save(ctx context.Context, conn *models.InstagramConnection) error {
	return r.db.WithContext(ctx).Save(conn).Error
}

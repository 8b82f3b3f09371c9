package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
)

// Repository exposes persistence for subscriptions and guest checkouts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	FindByStripeCustomerID(ctx context.Context, customerID string) (*models.Subscription, error)
	FindByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.Subscription, error)
	Create(ctx context.Context, sub *models.Subscription) error
	Save(ctx context.Context, sub *models.Subscription) error
	ListTrialsEndingBefore(ctx context.Context, cutoff time.Time) ([]models.Subscription, error)
	CreateGuestCheckout(ctx context.Context, row *models.GuestCheckout) error
	GetGuestCheckoutBySessionID(ctx context.Context, sessionID string) (*models.GuestCheckout, error)
	SaveGuestCheckout(ctx context.Context, row *models.GuestCheckout) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a billing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repositoryImpl) FindByStripeCustomerID(ctx context.Context, customerID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repositoryImpl) FindByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("stripe_subscription_id = ?", subscriptionID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repositoryImpl) Create(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *repositoryImpl) Save(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *repositoryImpl) ListTrialsEndingBefore(ctx context.Context, cutoff time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.SubscriptionStatusTrialing).
		Where("trial_ends_at IS NOT NULL AND trial_ends_at <= ?", cutoff).
		Order("trial_ends_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repositoryImpl) CreateGuestCheckout(ctx context.Context, row *models.GuestCheckout) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repositoryImpl) GetGuestCheckoutBySessionID(ctx context.Context, sessionID string) (*models.GuestCheckout, error) {
	var row models.GuestCheckout
	err := r.db.WithContext(ctx).Where("stripe_session_id = ?", sessionID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) SaveGuestCheckout(ctx context.Context, row *models.GuestCheckout) error {
	return r.db.WithContext(ctx).Save(row).Error
}

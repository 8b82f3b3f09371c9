package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/danamoreau/strandly-backend/internal/calendar"
	"github.com/danamoreau/strandly-backend/pkg/config"
	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
)

const defaultTrialDays = 14

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns subscription state, Stripe checkout flows and calendar access.
type Service interface {
	Resolve(ctx context.Context, userID *uuid.UUID) (*calendar.AccessStatus, error)
	TrialEndsAt(ctx context.Context, userID uuid.UUID) (*time.Time, error)
	StartTrial(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Subscription, error)
	CreateCheckoutSession(ctx context.Context, userID uuid.UUID, email string) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, userID uuid.UUID) (*PortalSession, error)
	StartGuestCheckout(ctx context.Context, email string) (*CheckoutSession, error)
	ConfirmGuestCheckout(ctx context.Context, sessionID string) (*ConfirmResult, error)
}

// ServiceParams lists the billing service dependencies.
type ServiceParams struct {
	DB        TxRunner
	Repo      Repository
	Stripe    StripeBillingClient
	StripeCfg config.StripeConfig
	TrialDays int
	Now       func() time.Time
	Sleep     func(ctx context.Context, d time.Duration) error
}

type service struct {
	db        TxRunner
	repo      Repository
	stripe    StripeBillingClient
	cfg       config.StripeConfig
	trialDays int
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewService validates dependencies and returns the billing service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "billing repository required")
	}
	if params.Stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe client required")
	}
	if params.TrialDays <= 0 {
		params.TrialDays = defaultTrialDays
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.Sleep == nil {
		params.Sleep = sleepCtx
	}
	return &service{
		db:        params.DB,
		repo:      params.Repo,
		stripe:    params.Stripe,
		cfg:       params.StripeCfg,
		trialDays: params.TrialDays,
		now:       params.Now,
		sleep:     params.Sleep,
	}, nil
}

func (s *service) Resolve(ctx context.Context, userID *uuid.UUID) (*calendar.AccessStatus, error) {
	if userID == nil || *userID == uuid.Nil {
		return nil, nil
	}

	sub, err := s.repo.GetByUserID(ctx, *userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	now := s.now().UTC()
	if sub == nil {
		return &calendar.AccessStatus{SubscriptionStatus: enums.SubscriptionStatusNone}, nil
	}

	status := &calendar.AccessStatus{SubscriptionStatus: sub.Status}
	switch sub.Status {
	case enums.SubscriptionStatusActive:
		status.HasAccess = true
		status.AccessibleMonths = calendar.AllMonths()
	case enums.SubscriptionStatusTrialing:
		if sub.TrialEndsAt != nil && sub.TrialEndsAt.After(now) {
			status.HasAccess = true
			status.AccessibleMonths = calendar.AllMonths()
		}
	case enums.SubscriptionStatusFree:
		if sub.FreeAccessEndsAt != nil && sub.FreeAccessEndsAt.After(now) {
			status.HasAccess = true
			status.FreeAccessEndsAt = sub.FreeAccessEndsAt
		}
	}
	return status, nil
}

func (s *service) TrialEndsAt(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	sub, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if sub == nil || sub.Status != enums.SubscriptionStatusTrialing {
		return nil, nil
	}
	return sub.TrialEndsAt, nil
}

func (s *service) StartTrial(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Subscription, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	repo := s.repo.WithTx(tx)

	existing, err := repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if existing != nil {
		return existing, nil
	}

	trialEnd := s.now().UTC().AddDate(0, 0, s.trialDays)
	sub := &models.Subscription{
		UserID:      userID,
		Status:      enums.SubscriptionStatusTrialing,
		TrialEndsAt: &trialEnd,
	}
	if err := repo.Create(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create trial subscription")
	}
	return sub, nil
}

func (s *service) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, email string) (*CheckoutSession, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if s.cfg.ProPriceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe price not configured")
	}

	sub, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if sub != nil && sub.Status == enums.SubscriptionStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "subscription is already active")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(s.cfg.CheckoutSuccessURL),
		CancelURL:         stripe.String(s.cfg.CheckoutCancelURL),
		ClientReferenceID: stripe.String(userID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.cfg.ProPriceID), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": userID.String()},
		},
	}
	if sub != nil && sub.StripeCustomerID != nil {
		params.Customer = stripe.String(*sub.StripeCustomerID)
	} else if email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe checkout session")
	}
	return &CheckoutSession{SessionID: session.ID, URL: session.URL}, nil
}

func (s *service) CreatePortalSession(ctx context.Context, userID uuid.UUID) (*PortalSession, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	sub, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if sub == nil || sub.StripeCustomerID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no billing account on file")
	}

	session, err := s.stripe.CreatePortalSession(ctx, &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*sub.StripeCustomerID),
		ReturnURL: stripe.String(s.cfg.PortalReturnURL),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe portal session")
	}
	return &PortalSession{URL: session.URL}, nil
}

func (s *service) StartGuestCheckout(ctx context.Context, email string) (*CheckoutSession, error) {
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if s.cfg.ProPriceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe price not configured")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:    stripe.String(s.cfg.CheckoutSuccessURL),
		CancelURL:     stripe.String(s.cfg.CheckoutCancelURL),
		CustomerEmail: stripe.String(email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.cfg.ProPriceID), Quantity: stripe.Int64(1)},
		},
	}
	session, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe checkout session")
	}

	row := &models.GuestCheckout{Email: email, StripeSessionID: session.ID}
	if err := s.repo.CreateGuestCheckout(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record guest checkout")
	}
	return &CheckoutSession{SessionID: session.ID, URL: session.URL}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

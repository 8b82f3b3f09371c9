package billing

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
)

const (
	// one immediate check plus two retries before giving up
	confirmExtraAttempts = 2
	confirmBackoff       = 2 * time.Second
)

// ConfirmGuestCheckout verifies a guest checkout session against Stripe.
// Payment settlement can lag the redirect, so an unpaid session is polled a
// couple of times before the checkout is parked for manual verification.
func (s *service) ConfirmGuestCheckout(ctx context.Context, sessionID string) (*ConfirmResult, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}

	row, err := s.repo.GetGuestCheckoutBySessionID(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load guest checkout")
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "guest checkout not found")
	}
	if row.Completed {
		return &ConfirmResult{
			State:       ConfirmStateConfirmed,
			Email:       row.Email,
			CompletedAt: row.CompletedAt,
		}, nil
	}

	attempts := 0
	for {
		attempts++
		session, err := s.stripe.GetCheckoutSession(ctx, sessionID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch stripe checkout session")
		}
		if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			break
		}
		if attempts > confirmExtraAttempts {
			return &ConfirmResult{
				State:    ConfirmStateAwaitingRep,
				Email:    row.Email,
				Attempts: attempts,
			}, nil
		}
		if err := s.sleep(ctx, confirmBackoff); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm poll interrupted")
		}
	}

	completedAt := s.now().UTC()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.GetGuestCheckoutBySessionID(ctx, sessionID)
		if err != nil {
			return err
		}
		if current == nil || current.Completed {
			return nil
		}
		current.Completed = true
		current.CompletedAt = &completedAt
		return repo.SaveGuestCheckout(ctx, current)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete guest checkout")
	}

	return &ConfirmResult{
		State:       ConfirmStateConfirmed,
		Email:       row.Email,
		Attempts:    attempts,
		CompletedAt: &completedAt,
	}, nil
}

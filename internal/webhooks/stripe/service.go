package stripewebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/danamoreau/strandly-backend/internal/billing"
	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
	"github.com/danamoreau/strandly-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type ServiceParams struct {
	BillingRepo       billing.Repository
	Outbox            eventEmitter
	TransactionRunner txRunner
}

type Service struct {
	billingRepo billing.Repository
	outbox      eventEmitter
	txRunner    txRunner
}

func NewService(params ServiceParams) (*Service, error) {
	if params.BillingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "billing repo required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox emitter required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		billingRepo: params.BillingRepo,
		outbox:      params.Outbox,
		txRunner:    params.TransactionRunner,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		var stripeSub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription event")
		}
		return s.syncSubscription(ctx, &stripeSub)
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		return s.completeCheckout(ctx, &session)
	default:
		return nil
	}
}

func (s *Service) syncSubscription(ctx context.Context, stripeSub *stripe.Subscription) error {
	if stripeSub == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription is required")
	}
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.billingRepo.WithTx(tx)
		stored, err := repo.FindByStripeSubscriptionID(ctx, stripeSub.ID)
		if err != nil {
			return err
		}
		if stored == nil {
			stored, err = s.resolveOwner(ctx, repo, stripeSub)
			if err != nil {
				return err
			}
		}
		if stored == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no account matches stripe subscription")
		}

		stored.StripeSubscriptionID = &stripeSub.ID
		if stripeSub.Customer != nil && stripeSub.Customer.ID != "" {
			customerID := stripeSub.Customer.ID
			stored.StripeCustomerID = &customerID
		}
		stored.Status = mapStripeStatus(stripeSub.Status)
		stored.CurrentPeriodEnd = periodEnd(stripeSub)
		if stripeSub.TrialEnd != 0 {
			trialEnd := time.Unix(stripeSub.TrialEnd, 0).UTC()
			stored.TrialEndsAt = &trialEnd
		}

		if err := repo.Save(ctx, stored); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save subscription")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSubscriptionUpdated,
			AggregateType: enums.AggregateSubscription,
			AggregateID:   stored.UserID,
			Data: map[string]any{
				"userId": stored.UserID.String(),
				"status": string(stored.Status),
			},
			Version: 1,
		})
	})
}

// resolveOwner finds the local subscription row for a Stripe subscription seen
// for the first time, via checkout metadata or the Stripe customer.
func (s *Service) resolveOwner(ctx context.Context, repo billing.Repository, stripeSub *stripe.Subscription) (*models.Subscription, error) {
	if raw, ok := stripeSub.Metadata["user_id"]; ok {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user id in subscription metadata")
		}
		stored, err := repo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			return stored, nil
		}
		return &models.Subscription{UserID: userID}, nil
	}
	if stripeSub.Customer != nil && stripeSub.Customer.ID != "" {
		return repo.FindByStripeCustomerID(ctx, stripeSub.Customer.ID)
	}
	return nil, nil
}

func (s *Service) completeCheckout(ctx context.Context, session *stripe.CheckoutSession) error {
	if session == nil || session.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session is required")
	}
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.billingRepo.WithTx(tx)

		row, err := repo.GetGuestCheckoutBySessionID(ctx, session.ID)
		if err != nil {
			return err
		}
		if row != nil && !row.Completed {
			now := time.Now().UTC()
			row.Completed = true
			row.CompletedAt = &now
			if err := repo.SaveGuestCheckout(ctx, row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete guest checkout")
			}
		}

		// logged-in checkouts carry the user id as the client reference
		if session.ClientReferenceID == "" {
			return nil
		}
		userID, err := uuid.Parse(session.ClientReferenceID)
		if err != nil {
			return nil
		}
		stored, err := repo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if stored == nil {
			stored = &models.Subscription{UserID: userID, Status: enums.SubscriptionStatusNone}
			if err := repo.Create(ctx, stored); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
			}
		}
		if session.Customer != nil && session.Customer.ID != "" {
			customerID := session.Customer.ID
			stored.StripeCustomerID = &customerID
			if err := repo.Save(ctx, stored); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save subscription")
			}
		}
		return nil
	})
}

func mapStripeStatus(status stripe.SubscriptionStatus) enums.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusPastDue:
		return enums.SubscriptionStatusActive
	case stripe.SubscriptionStatusTrialing:
		return enums.SubscriptionStatusTrialing
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusUnpaid,
		stripe.SubscriptionStatusIncompleteExpired:
		return enums.SubscriptionStatusRevoked
	default:
		return enums.SubscriptionStatusNone
	}
}

func periodEnd(sub *stripe.Subscription) *time.Time {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil
	}
	ts := sub.Items.Data[0].CurrentPeriodEnd
	if ts == 0 {
		return nil
	}
	end := time.Unix(ts, 0).UTC()
	return &end
}

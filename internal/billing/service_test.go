package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/danamoreau/strandly-backend/pkg/config"
	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
)

type fakeTxRunner struct{}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepo struct {
	subs      map[uuid.UUID]*models.Subscription
	checkouts map[string]*models.GuestCheckout
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		subs:      map[uuid.UUID]*models.Subscription{},
		checkouts: map[string]*models.GuestCheckout{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	if sub, ok := f.subs[userID]; ok {
		copied := *sub
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeRepo) FindByStripeCustomerID(ctx context.Context, customerID string) (*models.Subscription, error) {
	for _, sub := range f.subs {
		if sub.StripeCustomerID != nil && *sub.StripeCustomerID == customerID {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) FindByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	for _, sub := range f.subs {
		if sub.StripeSubscriptionID != nil && *sub.StripeSubscriptionID == subscriptionID {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) Create(ctx context.Context, sub *models.Subscription) error {
	f.subs[sub.UserID] = sub
	return nil
}

func (f *fakeRepo) Save(ctx context.Context, sub *models.Subscription) error {
	f.subs[sub.UserID] = sub
	return nil
}

func (f *fakeRepo) ListTrialsEndingBefore(ctx context.Context, cutoff time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	for _, sub := range f.subs {
		if sub.Status == enums.SubscriptionStatusTrialing && sub.TrialEndsAt != nil && !sub.TrialEndsAt.After(cutoff) {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}

func (f *fakeRepo) CreateGuestCheckout(ctx context.Context, row *models.GuestCheckout) error {
	f.checkouts[row.StripeSessionID] = row
	return nil
}

func (f *fakeRepo) GetGuestCheckoutBySessionID(ctx context.Context, sessionID string) (*models.GuestCheckout, error) {
	if row, ok := f.checkouts[sessionID]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeRepo) SaveGuestCheckout(ctx context.Context, row *models.GuestCheckout) error {
	f.checkouts[row.StripeSessionID] = row
	return nil
}

type fakeStripe struct {
	session     *stripe.CheckoutSession
	portal      *stripe.BillingPortalSession
	getResults  []*stripe.CheckoutSession
	getCalls    int
	lastParams  *stripe.CheckoutSessionParams
	createCalls int
}

func (f *fakeStripe) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.createCalls++
	f.lastParams = params
	return f.session, nil
}

func (f *fakeStripe) GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	idx := f.getCalls
	f.getCalls++
	if idx >= len(f.getResults) {
		idx = len(f.getResults) - 1
	}
	return f.getResults[idx], nil
}

func (f *fakeStripe) CreatePortalSession(ctx context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	return f.portal, nil
}

func fixedNow() time.Time {
	return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, repo *fakeRepo, client *fakeStripe) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		DB:     &fakeTxRunner{},
		Repo:   repo,
		Stripe: client,
		StripeCfg: config.StripeConfig{
			ProPriceID:         "price_pro_monthly",
			CheckoutSuccessURL: "https://app.strandly.io/checkout/success",
			CheckoutCancelURL:  "https://app.strandly.io/checkout/cancel",
			PortalReturnURL:    "https://app.strandly.io/settings/billing",
		},
		Now:   fixedNow,
		Sleep: func(ctx context.Context, d time.Duration) error { return nil },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func timePtr(v time.Time) *time.Time { return &v }
func strPtr(v string) *string        { return &v }

func TestResolveAnonymousReturnsNil(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeStripe{})

	status, err := svc.Resolve(context.Background(), nil)
	if err != nil || status != nil {
		t.Fatalf("expected nil status for anonymous, got %v %v", status, err)
	}
}

func TestResolveActiveUnlocksAllMonths(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	repo.subs[userID] = &models.Subscription{UserID: userID, Status: enums.SubscriptionStatusActive}
	svc := newTestService(t, repo, &fakeStripe{})

	status, err := svc.Resolve(context.Background(), &userID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !status.HasAccess || len(status.AccessibleMonths) != 12 {
		t.Fatalf("expected full access, got %+v", status)
	}
	if status.SubscriptionStatus != enums.SubscriptionStatusActive {
		t.Fatalf("expected active status, got %q", status.SubscriptionStatus)
	}
}

func TestResolveMissingSubscriptionReportsNone(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeStripe{})

	userID := uuid.New()
	status, err := svc.Resolve(context.Background(), &userID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if status.HasAccess || len(status.AccessibleMonths) != 0 {
		t.Fatalf("no subscription should mean no access, got %+v", status)
	}
	if status.SubscriptionStatus != enums.SubscriptionStatusNone {
		t.Fatalf("expected none status, got %q", status.SubscriptionStatus)
	}
}

func TestResolveExpiredTrialHasNoAccess(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	repo.subs[userID] = &models.Subscription{
		UserID:      userID,
		Status:      enums.SubscriptionStatusTrialing,
		TrialEndsAt: timePtr(fixedNow().AddDate(0, 0, -1)),
	}
	svc := newTestService(t, repo, &fakeStripe{})

	status, err := svc.Resolve(context.Background(), &userID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if status.HasAccess {
		t.Fatalf("expired trial should not have access: %+v", status)
	}
}

func TestResolveFreeGrantUsesDefaultWindow(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	repo.subs[userID] = &models.Subscription{
		UserID:           userID,
		Status:           enums.SubscriptionStatusFree,
		FreeAccessEndsAt: timePtr(fixedNow().AddDate(0, 1, 0)),
	}
	svc := newTestService(t, repo, &fakeStripe{})

	status, err := svc.Resolve(context.Background(), &userID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !status.HasAccess || len(status.AccessibleMonths) != 0 {
		t.Fatalf("free grant should have access with default window, got %+v", status)
	}
	if status.FreeAccessEndsAt == nil {
		t.Fatalf("expected free access end date")
	}
}

func TestStartTrialIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	svc := newTestService(t, repo, &fakeStripe{})

	first, err := svc.StartTrial(context.Background(), nil, userID)
	if err != nil {
		t.Fatalf("StartTrial: %v", err)
	}
	if first.Status != enums.SubscriptionStatusTrialing || first.TrialEndsAt == nil {
		t.Fatalf("unexpected trial subscription %+v", first)
	}
	wantEnd := fixedNow().AddDate(0, 0, 14)
	if !first.TrialEndsAt.Equal(wantEnd) {
		t.Fatalf("trial end = %v, want %v", first.TrialEndsAt, wantEnd)
	}

	second, err := svc.StartTrial(context.Background(), nil, userID)
	if err != nil {
		t.Fatalf("StartTrial again: %v", err)
	}
	if !second.TrialEndsAt.Equal(*first.TrialEndsAt) {
		t.Fatalf("second call should return existing subscription")
	}
}

func TestTrialEndsAtOnlyForTrialing(t *testing.T) {
	repo := newFakeRepo()
	trialing := uuid.New()
	active := uuid.New()
	end := fixedNow().AddDate(0, 0, 3)
	repo.subs[trialing] = &models.Subscription{UserID: trialing, Status: enums.SubscriptionStatusTrialing, TrialEndsAt: &end}
	repo.subs[active] = &models.Subscription{UserID: active, Status: enums.SubscriptionStatusActive, TrialEndsAt: &end}
	svc := newTestService(t, repo, &fakeStripe{})

	got, err := svc.TrialEndsAt(context.Background(), trialing)
	if err != nil || got == nil || !got.Equal(end) {
		t.Fatalf("expected trial end %v, got %v %v", end, got, err)
	}
	got, err = svc.TrialEndsAt(context.Background(), active)
	if err != nil || got != nil {
		t.Fatalf("active subscription should not report a trial end, got %v %v", got, err)
	}
}

func TestCreateCheckoutSessionRejectsActiveSubscription(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	repo.subs[userID] = &models.Subscription{UserID: userID, Status: enums.SubscriptionStatusActive}
	svc := newTestService(t, repo, &fakeStripe{})

	_, err := svc.CreateCheckoutSession(context.Background(), userID, "jess@example.com")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestCreateCheckoutSessionReusesStripeCustomer(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	repo.subs[userID] = &models.Subscription{
		UserID:           userID,
		Status:           enums.SubscriptionStatusTrialing,
		StripeCustomerID: strPtr("cus_123"),
	}
	client := &fakeStripe{session: &stripe.CheckoutSession{ID: "cs_1", URL: "https://stripe/cs_1"}}
	svc := newTestService(t, repo, client)

	got, err := svc.CreateCheckoutSession(context.Background(), userID, "jess@example.com")
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}
	if got.SessionID != "cs_1" || got.URL != "https://stripe/cs_1" {
		t.Fatalf("unexpected session %+v", got)
	}
	if client.lastParams.Customer == nil || *client.lastParams.Customer != "cus_123" {
		t.Fatalf("expected existing customer to be reused, got %+v", client.lastParams)
	}
	if client.lastParams.CustomerEmail != nil {
		t.Fatalf("customer email should be omitted when a customer exists")
	}
}

func TestCreatePortalSessionRequiresCustomer(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	repo.subs[userID] = &models.Subscription{UserID: userID, Status: enums.SubscriptionStatusTrialing}
	svc := newTestService(t, repo, &fakeStripe{})

	_, err := svc.CreatePortalSession(context.Background(), userID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestStartGuestCheckoutRecordsSession(t *testing.T) {
	repo := newFakeRepo()
	client := &fakeStripe{session: &stripe.CheckoutSession{ID: "cs_guest", URL: "https://stripe/cs_guest"}}
	svc := newTestService(t, repo, client)

	got, err := svc.StartGuestCheckout(context.Background(), "walkin@example.com")
	if err != nil {
		t.Fatalf("StartGuestCheckout: %v", err)
	}
	if got.SessionID != "cs_guest" {
		t.Fatalf("unexpected session %+v", got)
	}
	row := repo.checkouts["cs_guest"]
	if row == nil || row.Email != "walkin@example.com" || row.Completed {
		t.Fatalf("guest checkout row not recorded: %+v", row)
	}
}

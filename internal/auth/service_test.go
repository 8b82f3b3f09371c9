package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danamoreau/strandly-backend/internal/profiles"
	pkgauth "github.com/danamoreau/strandly-backend/pkg/auth"
	"github.com/danamoreau/strandly-backend/pkg/auth/session"
	"github.com/danamoreau/strandly-backend/pkg/config"
	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
	"github.com/danamoreau/strandly-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "strandly-test",
	ExpirationMinutes: 15,
}

type fakeTxRunner struct{}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (f *fakeUserRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := f.users[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	f.users[user.Email] = &copied
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	for _, user := range f.users {
		if user.ID == id {
			user.LastLoginAt = &at
		}
	}
	return nil
}

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*models.UserProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[uuid.UUID]*models.UserProfile{}}
}

func (f *fakeProfileRepo) WithTx(tx *gorm.DB) profiles.Repository { return f }

func (f *fakeProfileRepo) Get(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	if profile, ok := f.profiles[userID]; ok {
		copied := *profile
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeProfileRepo) Save(ctx context.Context, profile *models.UserProfile) error {
	copied := *profile
	f.profiles[profile.UserID] = &copied
	return nil
}

type fakeTrialStarter struct {
	started []uuid.UUID
}

func (f *fakeTrialStarter) StartTrial(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Subscription, error) {
	f.started = append(f.started, userID)
	return &models.Subscription{UserID: userID, Status: enums.SubscriptionStatusTrialing}, nil
}

type fakeSessionManager struct {
	sessions map[string]string
	revoked  []string
	failGen  error
	next     int
}

func newFakeSessionManager() *fakeSessionManager {
	return &fakeSessionManager{sessions: map[string]string{}}
}

func (f *fakeSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	if f.failGen != nil {
		return "", f.failGen
	}
	f.next++
	token := fmt.Sprintf("refresh-%d", f.next)
	f.sessions[accessID] = token
	return token, nil
}

func (f *fakeSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.sessions, oldAccessID)
	newAccessID := uuid.NewString()
	token, _ := f.Generate(ctx, newAccessID)
	return newAccessID, token, nil
}

func (f *fakeSessionManager) Revoke(ctx context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	delete(f.sessions, accessID)
	return nil
}

type testDeps struct {
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	trials   *fakeTrialStarter
	sessions *fakeSessionManager
}

func newTestService(t *testing.T) (Service, *testDeps) {
	t.Helper()
	deps := &testDeps{
		users:    newFakeUserRepo(),
		profiles: newFakeProfileRepo(),
		trials:   &fakeTrialStarter{},
		sessions: newFakeSessionManager(),
	}
	svc, err := NewService(ServiceParams{
		DB:             &fakeTxRunner{},
		UserRepo:       deps.users,
		ProfileRepo:    deps.profiles,
		Trials:         deps.trials,
		SessionManager: deps.sessions,
		JWTConfig:      testJWTConfig,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, deps
}

func registerUser(t *testing.T, svc Service, email string) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:       email,
		Password:    "correct-horse",
		DisplayName: "Dana",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return resp
}

func TestRegisterCreatesProfileAndTrial(t *testing.T) {
	svc, deps := newTestService(t)

	resp := registerUser(t, svc, "Dana@Example.com")
	if resp.User.Email != "dana@example.com" {
		t.Fatalf("email should be normalized, got %q", resp.User.Email)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected token pair")
	}
	if len(deps.trials.started) != 1 || deps.trials.started[0] != resp.User.ID {
		t.Fatalf("trial not started for new user")
	}
	profile, _ := deps.profiles.Get(context.Background(), resp.User.ID)
	if profile == nil || profile.Voice != enums.VoiceSoloStylist {
		t.Fatalf("default profile missing, got %+v", profile)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.SalonID != nil {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	registerUser(t, svc, "dana@example.com")

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "DANA@example.com",
		Password:    "another-pass",
		DisplayName: "Dana Again",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []RegisterRequest{
		{Email: "not-an-email", Password: "long-enough", DisplayName: "Dana"},
		{Email: "dana@example.com", Password: "short", DisplayName: "Dana"},
		{Email: "dana@example.com", Password: "long-enough", DisplayName: "  "},
	}
	for i, req := range cases {
		_, err := svc.Register(context.Background(), req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected VALIDATION_ERROR, got %v", i, err)
		}
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	registerUser(t, svc, "dana@example.com")

	_, err := svc.Login(context.Background(), LoginRequest{Email: "dana@example.com", Password: "wrong-password"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("credential failures must not leak detail, got %q", typed.Message())
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "whatever-pass"})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("unknown email should look identical, got %v", err)
	}
}

func TestLoginMintsSalonClaims(t *testing.T) {
	svc, deps := newTestService(t)
	resp := registerUser(t, svc, "dana@example.com")

	salonID := uuid.New()
	role := enums.SalonRoleOwner
	profile, _ := deps.profiles.Get(context.Background(), resp.User.ID)
	profile.SalonID = &salonID
	profile.SalonRole = &role
	if err := deps.profiles.Save(context.Background(), profile); err != nil {
		t.Fatalf("Save profile: %v", err)
	}

	login, err := svc.Login(context.Background(), LoginRequest{Email: "dana@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig, login.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.SalonID == nil || *claims.SalonID != salonID {
		t.Fatalf("salon claim missing, got %+v", claims)
	}
	if claims.Role == nil || *claims.Role != enums.SalonRoleOwner {
		t.Fatalf("role claim missing, got %+v", claims)
	}

	stored := deps.users.users["dana@example.com"]
	if stored.LastLoginAt == nil {
		t.Fatalf("last login not recorded")
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _ := newTestService(t)
	resp := registerUser(t, svc, "dana@example.com")

	pair, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if pair.RefreshToken == resp.RefreshToken {
		t.Fatalf("refresh token should rotate")
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig, pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Fatalf("rotated token lost user, got %+v", claims)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("replayed refresh token must fail, got %v", err)
	}
}

func TestRefreshRejectsForgedToken(t *testing.T) {
	svc, _ := newTestService(t)
	registerUser(t, svc, "dana@example.com")

	forged, err := pkgauth.MintAccessToken(config.JWTConfig{
		Secret:            "other-secret",
		Issuer:            testJWTConfig.Issuer,
		ExpirationMinutes: 15,
	}, time.Now().UTC(), pkgauth.AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{AccessToken: forged, RefreshToken: "refresh-1"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLogoutIsBestEffort(t *testing.T) {
	svc, deps := newTestService(t)
	resp := registerUser(t, svc, "dana@example.com")

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if err := svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(deps.sessions.revoked) != 1 || deps.sessions.revoked[0] != claims.ID {
		t.Fatalf("session not revoked, got %v", deps.sessions.revoked)
	}

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("blank access id should be a no-op, got %v", err)
	}
}

func TestVerifyPasswordRoundTrip(t *testing.T) {
	hash, err := security.HashPassword("correct-horse", config.PasswordConfig{})
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	ok, err := security.VerifyPassword("correct-horse", hash)
	if err != nil || !ok {
		t.Fatalf("expected match, got %v %v", ok, err)
	}
}

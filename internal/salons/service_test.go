package salons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
	"github.com/danamoreau/strandly-backend/pkg/outbox"
)

type fakeTxRunner struct{}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeRepo struct {
	salons     map[uuid.UUID]*models.Salon
	members    map[uuid.UUID]*models.SalonMember
	challenges map[uuid.UUID]*models.SalonChallenge
	progress   map[uuid.UUID]*models.StylistProgress
	attached   map[uuid.UUID]uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		salons:     map[uuid.UUID]*models.Salon{},
		members:    map[uuid.UUID]*models.SalonMember{},
		challenges: map[uuid.UUID]*models.SalonChallenge{},
		progress:   map[uuid.UUID]*models.StylistProgress{},
		attached:   map[uuid.UUID]uuid.UUID{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) GetSalon(ctx context.Context, id uuid.UUID) (*models.Salon, error) {
	if s, ok := f.salons[id]; ok {
		return s, nil
	}
	return nil, nil
}

func (f *fakeRepo) GetSalonByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Salon, error) {
	for _, s := range f.salons {
		if s.OwnerUserID == ownerUserID {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CreateSalon(ctx context.Context, salon *models.Salon) error {
	if salon.ID == uuid.Nil {
		salon.ID = uuid.New()
	}
	f.salons[salon.ID] = salon
	return nil
}

func (f *fakeRepo) SaveSalon(ctx context.Context, salon *models.Salon) error {
	f.salons[salon.ID] = salon
	return nil
}

func (f *fakeRepo) GetMember(ctx context.Context, id uuid.UUID) (*models.SalonMember, error) {
	if m, ok := f.members[id]; ok {
		return m, nil
	}
	return nil, nil
}

func (f *fakeRepo) GetMemberByToken(ctx context.Context, token string) (*models.SalonMember, error) {
	for _, m := range f.members {
		if m.InviteToken == token {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) FindMemberByUser(ctx context.Context, userID uuid.UUID) (*models.SalonMember, error) {
	for _, m := range f.members {
		if m.UserID != nil && *m.UserID == userID && m.InvitationStatus == enums.InvitationStatusAccepted {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) FindMemberByEmail(ctx context.Context, salonID uuid.UUID, email string) (*models.SalonMember, error) {
	for _, m := range f.members {
		if m.SalonID == salonID && m.Email == email &&
			(m.InvitationStatus == enums.InvitationStatusPending || m.InvitationStatus == enums.InvitationStatusAccepted) {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListMembers(ctx context.Context, salonID uuid.UUID) ([]models.SalonMember, error) {
	var out []models.SalonMember
	for _, m := range f.members {
		if m.SalonID == salonID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateMember(ctx context.Context, member *models.SalonMember) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	f.members[member.ID] = member
	return nil
}

func (f *fakeRepo) SaveMember(ctx context.Context, member *models.SalonMember) error {
	f.members[member.ID] = member
	return nil
}

func (f *fakeRepo) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for _, m := range f.members {
		if m.InvitationStatus == enums.InvitationStatusPending && m.InvitedAt.Before(cutoff) {
			m.InvitationStatus = enums.InvitationStatusExpired
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) AttachProfileSalon(ctx context.Context, userID, salonID uuid.UUID, role enums.SalonRole) error {
	f.attached[userID] = salonID
	return nil
}

func (f *fakeRepo) DetachProfileSalon(ctx context.Context, userID uuid.UUID) error {
	delete(f.attached, userID)
	return nil
}

func (f *fakeRepo) CreateSalonChallenge(ctx context.Context, challenge *models.SalonChallenge) error {
	if challenge.ID == uuid.Nil {
		challenge.ID = uuid.New()
	}
	f.challenges[challenge.ID] = challenge
	return nil
}

func (f *fakeRepo) GetSalonChallenge(ctx context.Context, id uuid.UUID) (*models.SalonChallenge, error) {
	if c, ok := f.challenges[id]; ok {
		return c, nil
	}
	return nil, nil
}

func (f *fakeRepo) ListSalonChallenges(ctx context.Context, salonID uuid.UUID) ([]models.SalonChallenge, error) {
	var out []models.SalonChallenge
	for _, c := range f.challenges {
		if c.SalonID == salonID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeRepo) SaveSalonChallenge(ctx context.Context, challenge *models.SalonChallenge) error {
	f.challenges[challenge.ID] = challenge
	return nil
}

func (f *fakeRepo) DeleteSalonChallenge(ctx context.Context, id uuid.UUID) error {
	delete(f.challenges, id)
	for pid, row := range f.progress {
		if row.SalonChallengeID == id {
			delete(f.progress, pid)
		}
	}
	return nil
}

func (f *fakeRepo) GetStylistProgress(ctx context.Context, challengeID, userID uuid.UUID) (*models.StylistProgress, error) {
	for _, row := range f.progress {
		if row.SalonChallengeID == challengeID && row.UserID == userID {
			return row, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListStylistProgress(ctx context.Context, challengeID uuid.UUID) ([]models.StylistProgress, error) {
	var out []models.StylistProgress
	for _, row := range f.progress {
		if row.SalonChallengeID == challengeID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateStylistProgress(ctx context.Context, row *models.StylistProgress) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.progress[row.ID] = row
	return nil
}

func (f *fakeRepo) SaveStylistProgress(ctx context.Context, row *models.StylistProgress) error {
	f.progress[row.ID] = row
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, repo *fakeRepo, emitter *fakeEmitter) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		DB:            &fakeTxRunner{},
		Repo:          repo,
		Outbox:        emitter,
		InviteTTLDays: 14,
		Now:           fixedNow,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func seedSalon(repo *fakeRepo, ownerID uuid.UUID, seatLimit, seatCount int) *models.Salon {
	salon := &models.Salon{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		Name:        "Shear Genius",
		SeatLimit:   seatLimit,
		SeatCount:   seatCount,
	}
	repo.salons[salon.ID] = salon
	return salon
}

func TestCreateSalonAttachesOwner(t *testing.T) {
	repo := newFakeRepo()
	ownerID := uuid.New()
	svc := newTestService(t, repo, &fakeEmitter{})

	team, err := svc.CreateSalon(context.Background(), ownerID, CreateSalonParams{Name: "Shear Genius"})
	if err != nil {
		t.Fatalf("CreateSalon: %v", err)
	}
	if team.SeatLimit != 5 || team.SeatCount != 0 {
		t.Fatalf("unexpected seats: %+v", team)
	}
	if repo.attached[ownerID] != team.SalonID {
		t.Fatalf("owner profile not attached to salon")
	}

	_, err = svc.CreateSalon(context.Background(), ownerID, CreateSalonParams{Name: "Second"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT for second salon, got %v", err)
	}
}

func TestInviteRequiresOwner(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, &fakeEmitter{})

	_, err := svc.Invite(context.Background(), uuid.New(), "stylist@example.com", enums.SalonRoleStylist)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestInviteRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	ownerID := uuid.New()
	seedSalon(repo, ownerID, 5, 0)
	svc := newTestService(t, repo, &fakeEmitter{})

	if _, err := svc.Invite(context.Background(), ownerID, "stylist@example.com", enums.SalonRoleStylist); err != nil {
		t.Fatalf("Invite: %v", err)
	}
	_, err := svc.Invite(context.Background(), ownerID, "stylist@example.com", enums.SalonRoleStylist)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestAcceptInviteConsumesSeat(t *testing.T) {
	repo := newFakeRepo()
	emitter := &fakeEmitter{}
	ownerID := uuid.New()
	salon := seedSalon(repo, ownerID, 2, 0)
	svc := newTestService(t, repo, emitter)

	invite, err := svc.Invite(context.Background(), ownerID, "stylist@example.com", enums.SalonRoleStylist)
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}

	stylistID := uuid.New()
	team, err := svc.AcceptInvite(context.Background(), stylistID, invite.InviteToken)
	if err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}
	if team.SeatCount != 1 {
		t.Fatalf("seat count = %d, want 1", team.SeatCount)
	}
	if repo.attached[stylistID] != salon.ID {
		t.Fatalf("stylist profile not attached")
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventInvitationAccepted {
		t.Fatalf("expected invitation.accepted event, got %+v", emitter.events)
	}

	_, err = svc.AcceptInvite(context.Background(), uuid.New(), invite.InviteToken)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("token should be single-use, got %v", err)
	}
}

func TestAcceptInviteFullSalon(t *testing.T) {
	repo := newFakeRepo()
	ownerID := uuid.New()
	seedSalon(repo, ownerID, 1, 1)
	svc := newTestService(t, repo, &fakeEmitter{})

	invite, err := svc.Invite(context.Background(), ownerID, "late@example.com", enums.SalonRoleStylist)
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	_, err = svc.AcceptInvite(context.Background(), uuid.New(), invite.InviteToken)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT for full salon, got %v", err)
	}
}

func TestAcceptInviteExpired(t *testing.T) {
	repo := newFakeRepo()
	ownerID := uuid.New()
	salon := seedSalon(repo, ownerID, 5, 0)
	member := &models.SalonMember{
		ID:               uuid.New(),
		SalonID:          salon.ID,
		Email:            "slow@example.com",
		Role:             enums.SalonRoleStylist,
		InvitationStatus: enums.InvitationStatusPending,
		InviteToken:      "tok_old",
		InvitedAt:        fixedNow().AddDate(0, 0, -30),
	}
	repo.members[member.ID] = member
	svc := newTestService(t, repo, &fakeEmitter{})

	_, err := svc.AcceptInvite(context.Background(), uuid.New(), "tok_old")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT for expired invite, got %v", err)
	}
	if member.InvitationStatus != enums.InvitationStatusExpired {
		t.Fatalf("invite should be marked expired, got %s", member.InvitationStatus)
	}
}

func TestRevokeAcceptedMemberFreesSeat(t *testing.T) {
	repo := newFakeRepo()
	ownerID := uuid.New()
	salon := seedSalon(repo, ownerID, 2, 0)
	svc := newTestService(t, repo, &fakeEmitter{})

	invite, _ := svc.Invite(context.Background(), ownerID, "stylist@example.com", enums.SalonRoleStylist)
	stylistID := uuid.New()
	if _, err := svc.AcceptInvite(context.Background(), stylistID, invite.InviteToken); err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}

	if err := svc.RevokeInvite(context.Background(), ownerID, invite.MemberID); err != nil {
		t.Fatalf("RevokeInvite: %v", err)
	}
	if repo.salons[salon.ID].SeatCount != 0 {
		t.Fatalf("seat not freed: %d", repo.salons[salon.ID].SeatCount)
	}
	if _, attached := repo.attached[stylistID]; attached {
		t.Fatalf("stylist profile should be detached")
	}

	err := svc.RevokeInvite(context.Background(), ownerID, invite.MemberID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT on double revoke, got %v", err)
	}
}

func TestExpireStaleInvitations(t *testing.T) {
	repo := newFakeRepo()
	ownerID := uuid.New()
	salon := seedSalon(repo, ownerID, 5, 0)
	stale := &models.SalonMember{
		ID:               uuid.New(),
		SalonID:          salon.ID,
		Email:            "stale@example.com",
		InvitationStatus: enums.InvitationStatusPending,
		InviteToken:      "tok_stale",
		InvitedAt:        fixedNow().AddDate(0, 0, -20),
	}
	fresh := &models.SalonMember{
		ID:               uuid.New(),
		SalonID:          salon.ID,
		Email:            "fresh@example.com",
		InvitationStatus: enums.InvitationStatusPending,
		InviteToken:      "tok_fresh",
		InvitedAt:        fixedNow().AddDate(0, 0, -1),
	}
	repo.members[stale.ID] = stale
	repo.members[fresh.ID] = fresh
	svc := newTestService(t, repo, &fakeEmitter{})

	n, err := svc.ExpireStaleInvitations(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("expected 1 expired, got %d %v", n, err)
	}
	if fresh.InvitationStatus != enums.InvitationStatusPending {
		t.Fatalf("fresh invite should stay pending")
	}
}

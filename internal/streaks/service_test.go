package streaks

import (
	"context"
	"errors"
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

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepo struct {
	record    *models.StreakRecord
	logs      []models.DailyPostLog
	insertErr error
	resetN    int64
	resetDay  time.Time
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) GetRecord(ctx context.Context, userID uuid.UUID) (*models.StreakRecord, error) {
	if f.record == nil {
		return nil, nil
	}
	copied := *f.record
	return &copied, nil
}

func (f *fakeRepo) SaveRecord(ctx context.Context, record *models.StreakRecord) error {
	copied := *record
	f.record = &copied
	return nil
}

func (f *fakeRepo) InsertLog(ctx context.Context, log *models.DailyPostLog) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeRepo) CountLogsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	return int64(len(f.logs)), nil
}

func (f *fakeRepo) ResetExpired(ctx context.Context, lastValidDay time.Time) (int64, error) {
	f.resetDay = lastValidDay
	return f.resetN, nil
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeTrials struct {
	endsAt *time.Time
}

func (f *fakeTrials) TrialEndsAt(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	return f.endsAt, nil
}

func newTestService(t *testing.T, repo *fakeRepo, emitter *fakeEmitter, trials TrialLookup, now time.Time) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		DB:     fakeTxRunner{},
		Repo:   repo,
		Outbox: emitter,
		Trials: trials,
		Now:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestLogFirstPost(t *testing.T) {
	repo := &fakeRepo{}
	emitter := &fakeEmitter{}
	now := time.Date(2025, time.June, 10, 15, 0, 0, 0, time.UTC)
	svc := newTestService(t, repo, emitter, nil, now)

	userID := uuid.New()
	result, err := svc.Log(context.Background(), LogParams{UserID: userID, Source: SourceWeb})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if result.CurrentStreak != 1 || result.TotalPosts != 1 || result.LongestStreak != 1 {
		t.Fatalf("unexpected counters: %+v", result)
	}
	if len(repo.logs) != 1 || repo.logs[0].Source != SourceWeb {
		t.Fatalf("expected one web log row, got %+v", repo.logs)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventStreakLogged {
		t.Fatalf("expected streak_logged event, got %+v", emitter.events)
	}
}

func TestLogConsecutiveDayExtendsStreak(t *testing.T) {
	now := time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC)
	yesterday := time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()
	repo := &fakeRepo{record: &models.StreakRecord{
		UserID:        userID,
		CurrentStreak: 6,
		LongestStreak: 6,
		TotalPosts:    20,
		LastLoggedOn:  &yesterday,
	}}
	emitter := &fakeEmitter{}
	svc := newTestService(t, repo, emitter, nil, now)

	result, err := svc.Log(context.Background(), LogParams{UserID: userID})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if result.CurrentStreak != 7 || result.LongestStreak != 7 || result.TotalPosts != 21 {
		t.Fatalf("unexpected counters: %+v", result)
	}
	if result.MilestoneHit == nil || result.MilestoneHit.Days != 7 {
		t.Fatalf("expected 7-day milestone hit, got %+v", result.MilestoneHit)
	}
	if len(emitter.events) != 2 || emitter.events[1].EventType != enums.EventStreakMilestoneReached {
		t.Fatalf("expected milestone event, got %+v", emitter.events)
	}
}

func TestLogAfterGapRestartsStreak(t *testing.T) {
	now := time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC)
	lastWeek := time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()
	repo := &fakeRepo{record: &models.StreakRecord{
		UserID:        userID,
		CurrentStreak: 5,
		LongestStreak: 12,
		TotalPosts:    40,
		LastLoggedOn:  &lastWeek,
	}}
	svc := newTestService(t, repo, &fakeEmitter{}, nil, now)

	result, err := svc.Log(context.Background(), LogParams{UserID: userID})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if result.CurrentStreak != 1 {
		t.Fatalf("expected restart at 1, got %d", result.CurrentStreak)
	}
	if result.LongestStreak != 12 {
		t.Fatalf("longest streak should survive the gap, got %d", result.LongestStreak)
	}
}

func TestLogTwiceSameDayReturnsAlreadyLogged(t *testing.T) {
	now := time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC)
	today := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()
	repo := &fakeRepo{record: &models.StreakRecord{
		UserID:        userID,
		CurrentStreak: 3,
		LongestStreak: 3,
		TotalPosts:    3,
		LastLoggedOn:  &today,
	}}
	svc := newTestService(t, repo, &fakeEmitter{}, nil, now)

	_, err := svc.Log(context.Background(), LogParams{UserID: userID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeAlreadyLogged {
		t.Fatalf("expected ALREADY_LOGGED, got %v", err)
	}
	if repo.record.CurrentStreak != 3 || repo.record.TotalPosts != 3 {
		t.Fatalf("counters must stay untouched: %+v", repo.record)
	}
}

func TestLogUniqueViolationMapsToAlreadyLogged(t *testing.T) {
	now := time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC)
	repo := &fakeRepo{insertErr: errors.New(`duplicate key value violates unique constraint "uniq_daily_post_logs_user_day"`)}
	svc := newTestService(t, repo, &fakeEmitter{}, nil, now)

	_, err := svc.Log(context.Background(), LogParams{UserID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeAlreadyLogged {
		t.Fatalf("expected ALREADY_LOGGED from unique violation, got %v", err)
	}
}

func TestGetDerivesHasPostedToday(t *testing.T) {
	now := time.Date(2025, time.June, 10, 23, 0, 0, 0, time.UTC)
	today := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()
	repo := &fakeRepo{record: &models.StreakRecord{
		UserID:        userID,
		CurrentStreak: 10,
		LongestStreak: 10,
		TotalPosts:    10,
		LastLoggedOn:  &today,
	}}
	svc := newTestService(t, repo, &fakeEmitter{}, nil, now)

	view, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !view.HasPostedToday {
		t.Fatal("expected hasPostedToday true")
	}
	if len(view.Earned) != 2 || view.Next == nil || view.Next.Days != 14 {
		t.Fatalf("unexpected milestones: earned=%d next=%+v", len(view.Earned), view.Next)
	}
}

func TestGetUnknownUserReturnsZeroView(t *testing.T) {
	now := time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC)
	svc := newTestService(t, &fakeRepo{}, &fakeEmitter{}, nil, now)

	view, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.CurrentStreak != 0 || view.HasPostedToday {
		t.Fatalf("expected zero view, got %+v", view)
	}
}

func TestGetTrialWarning(t *testing.T) {
	now := time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC)
	endsAt := now.Add(48 * time.Hour)
	userID := uuid.New()
	today := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{record: &models.StreakRecord{
		UserID:        userID,
		CurrentStreak: 4,
		LongestStreak: 4,
		TotalPosts:    4,
		LastLoggedOn:  &today,
	}}
	svc := newTestService(t, repo, &fakeEmitter{}, &fakeTrials{endsAt: &endsAt}, now)

	view, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.TrialWarning == nil || view.TrialWarning.Expired {
		t.Fatalf("expected active trial warning, got %+v", view.TrialWarning)
	}

	// far-off trial produces no warning
	farOff := now.Add(10 * 24 * time.Hour)
	svc = newTestService(t, repo, &fakeEmitter{}, &fakeTrials{endsAt: &farOff}, now)
	view, err = svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.TrialWarning != nil {
		t.Fatalf("expected no warning, got %+v", view.TrialWarning)
	}
}

func TestResetExpiredUsesYesterdayBoundary(t *testing.T) {
	now := time.Date(2025, time.June, 10, 0, 30, 0, 0, time.UTC)
	repo := &fakeRepo{resetN: 4}
	svc := newTestService(t, repo, &fakeEmitter{}, nil, now)

	count, err := svc.ResetExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("ResetExpired: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 resets, got %d", count)
	}
	wantDay := time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC)
	if !repo.resetDay.Equal(wantDay) {
		t.Fatalf("expected boundary %v, got %v", wantDay, repo.resetDay)
	}
}

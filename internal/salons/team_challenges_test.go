package salons

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
	pkgerrors "github.com/danamoreau/strandly-backend/pkg/errors"
)

func runningParams() TeamChallengeParams {
	return TeamChallengeParams{
		Title:         "March Transformation Blitz",
		Description:   "Post three transformations this month",
		PostsRequired: 3,
		StartsAt:      fixedNow().AddDate(0, 0, -5),
		EndsAt:        fixedNow().AddDate(0, 0, 10),
	}
}

func acceptStylist(t *testing.T, svc Service, ownerID uuid.UUID, email string) uuid.UUID {
	t.Helper()
	invite, err := svc.Invite(context.Background(), ownerID, email, enums.SalonRoleStylist)
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	stylistID := uuid.New()
	if _, err := svc.AcceptInvite(context.Background(), stylistID, invite.InviteToken); err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}
	return stylistID
}

func TestCreateTeamChallengeEmitsAssignment(t *testing.T) {
	repo := newFakeRepo()
	emitter := &fakeEmitter{}
	ownerID := uuid.New()
	seedSalon(repo, ownerID, 5, 0)
	svc := newTestService(t, repo, emitter)

	view, err := svc.CreateTeamChallenge(context.Background(), ownerID, runningParams())
	if err != nil {
		t.Fatalf("CreateTeamChallenge: %v", err)
	}
	if view.Status != enums.ChallengeStatusActive {
		t.Fatalf("status = %s, want active", view.Status)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventTeamChallengeAssigned {
		t.Fatalf("expected team challenge event, got %+v", emitter.events)
	}
}

func TestCreateTeamChallengeValidation(t *testing.T) {
	repo := newFakeRepo()
	ownerID := uuid.New()
	seedSalon(repo, ownerID, 5, 0)
	svc := newTestService(t, repo, &fakeEmitter{})

	params := runningParams()
	params.EndsAt = params.StartsAt
	_, err := svc.CreateTeamChallenge(context.Background(), ownerID, params)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestLogTeamProgressCompletesAtTarget(t *testing.T) {
	repo := newFakeRepo()
	ownerID := uuid.New()
	seedSalon(repo, ownerID, 5, 0)
	svc := newTestService(t, repo, &fakeEmitter{})

	stylistID := acceptStylist(t, svc, ownerID, "stylist@example.com")
	view, err := svc.CreateTeamChallenge(context.Background(), ownerID, runningParams())
	if err != nil {
		t.Fatalf("CreateTeamChallenge: %v", err)
	}

	var progress *StylistProgressView
	for i := 0; i < 3; i++ {
		progress, err = svc.LogTeamProgress(context.Background(), stylistID, view.ID)
		if err != nil {
			t.Fatalf("LogTeamProgress %d: %v", i, err)
		}
	}
	if progress.Progress != 3 || !progress.Completed {
		t.Fatalf("expected completion at 3 posts, got %+v", progress)
	}

	_, err = svc.LogTeamProgress(context.Background(), stylistID, view.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT after completion, got %v", err)
	}
}

func TestLogTeamProgressOutsideWindow(t *testing.T) {
	repo := newFakeRepo()
	ownerID := uuid.New()
	salon := seedSalon(repo, ownerID, 5, 0)
	svc := newTestService(t, repo, &fakeEmitter{})

	challenge := &models.SalonChallenge{
		ID:            uuid.New(),
		SalonID:       salon.ID,
		Title:         "Past blitz",
		PostsRequired: 3,
		StartsAt:      fixedNow().AddDate(0, -2, 0),
		EndsAt:        fixedNow().AddDate(0, -1, 0),
		Status:        enums.ChallengeStatusActive,
	}
	repo.challenges[challenge.ID] = challenge

	_, err := svc.LogTeamProgress(context.Background(), ownerID, challenge.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT outside window, got %v", err)
	}
}

func TestUpdateAndDeleteTeamChallengeOwnerOnly(t *testing.T) {
	repo := newFakeRepo()
	ownerID := uuid.New()
	seedSalon(repo, ownerID, 5, 0)
	svc := newTestService(t, repo, &fakeEmitter{})

	view, err := svc.CreateTeamChallenge(context.Background(), ownerID, runningParams())
	if err != nil {
		t.Fatalf("CreateTeamChallenge: %v", err)
	}

	params := runningParams()
	params.Title = "Renamed Blitz"
	updated, err := svc.UpdateTeamChallenge(context.Background(), ownerID, view.ID, params)
	if err != nil || updated.Title != "Renamed Blitz" {
		t.Fatalf("UpdateTeamChallenge: %v %+v", err, updated)
	}

	_, err = svc.UpdateTeamChallenge(context.Background(), uuid.New(), view.ID, params)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN for non-owner, got %v", err)
	}

	if err := svc.DeleteTeamChallenge(context.Background(), ownerID, view.ID); err != nil {
		t.Fatalf("DeleteTeamChallenge: %v", err)
	}
	if _, ok := repo.challenges[view.ID]; ok {
		t.Fatalf("challenge should be deleted")
	}
}

func TestListTeamChallengesVisibleToMembers(t *testing.T) {
	repo := newFakeRepo()
	ownerID := uuid.New()
	seedSalon(repo, ownerID, 5, 0)
	svc := newTestService(t, repo, &fakeEmitter{})

	stylistID := acceptStylist(t, svc, ownerID, "stylist@example.com")
	if _, err := svc.CreateTeamChallenge(context.Background(), ownerID, runningParams()); err != nil {
		t.Fatalf("CreateTeamChallenge: %v", err)
	}

	views, err := svc.ListTeamChallenges(context.Background(), stylistID)
	if err != nil {
		t.Fatalf("ListTeamChallenges: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 challenge, got %d", len(views))
	}

	_, err = svc.ListTeamChallenges(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for outsider, got %v", err)
	}
}

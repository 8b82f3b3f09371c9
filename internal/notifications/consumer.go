package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/danamoreau/strandly-backend/pkg/db/models"
	"github.com/danamoreau/strandly-backend/pkg/enums"
	"github.com/danamoreau/strandly-backend/pkg/logger"
	"github.com/danamoreau/strandly-backend/pkg/outbox"
	"github.com/danamoreau/strandly-backend/pkg/outbox/idempotency"
)

const engagementConsumer = "engagement-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type teamRoster interface {
	ListMembers(ctx context.Context, salonID uuid.UUID) ([]models.SalonMember, error)
}

// Consumer turns engagement events into in-app notification rows.
type Consumer struct {
	repo         repository
	roster       teamRoster
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the engagement notification consumer.
func NewConsumer(repo repository, roster teamRoster, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if roster == nil {
		return nil, fmt.Errorf("salon roster lookup required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("engagement subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		roster:       roster,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	if !handledEvent(eventType) {
		c.logg.Info(logCtx, "skipping non-engagement event")
		return processResult{ack: true}
	}

	envelope, err := outbox.ParseEnvelope(msg.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, engagementConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, eventType, envelope.Data); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, engagementConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func handledEvent(eventType enums.OutboxEventType) bool {
	switch eventType {
	case enums.EventStreakMilestoneReached,
		enums.EventChallengeCompleted,
		enums.EventInvitationAccepted,
		enums.EventTeamChallengeAssigned,
		enums.EventTrialExpiringSoon:
		return true
	}
	return false
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage) error {
	switch eventType {
	case enums.EventStreakMilestoneReached:
		var payload milestonePayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyMilestone(ctx, payload)
	case enums.EventChallengeCompleted:
		var payload challengeCompletedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyChallengeCompleted(ctx, payload)
	case enums.EventInvitationAccepted:
		var payload invitationAcceptedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyInviteAccepted(ctx, payload)
	case enums.EventTeamChallengeAssigned:
		var payload teamChallengePayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyTeamChallenge(ctx, payload)
	case enums.EventTrialExpiringSoon:
		var payload trialExpiringPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyTrialExpiring(ctx, payload)
	default:
		return nil
	}
}

func (c *Consumer) notifyMilestone(ctx context.Context, payload milestonePayload) error {
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}
	return c.repo.Create(ctx, &models.Notification{
		UserID:  payload.UserID,
		Type:    enums.NotificationStreakMilestone,
		Title:   "Streak milestone reached",
		Message: fmt.Sprintf("You hit %s with a %d-day posting streak. Keep it going!", payload.Milestone, payload.Days),
		Link:    stringPtr("/streak"),
	})
}

func (c *Consumer) notifyChallengeCompleted(ctx context.Context, payload challengeCompletedPayload) error {
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}
	message := fmt.Sprintf("You completed the %q challenge.", payload.Title)
	if payload.RewardBadge != "" {
		message = fmt.Sprintf("You completed the %q challenge and earned the %s badge.", payload.Title, payload.RewardBadge)
	}
	return c.repo.Create(ctx, &models.Notification{
		UserID:  payload.UserID,
		Type:    enums.NotificationChallengeCompleted,
		Title:   "Challenge completed",
		Message: message,
		Link:    stringPtr("/challenges"),
	})
}

func (c *Consumer) notifyInviteAccepted(ctx context.Context, payload invitationAcceptedPayload) error {
	if payload.OwnerUserID == uuid.Nil {
		return fmt.Errorf("owner user id missing")
	}
	return c.repo.Create(ctx, &models.Notification{
		UserID:  payload.OwnerUserID,
		Type:    enums.NotificationInviteAccepted,
		Title:   "Invitation accepted",
		Message: fmt.Sprintf("%s joined your salon.", payload.Email),
		Link:    stringPtr("/salon/team"),
	})
}

func (c *Consumer) notifyTeamChallenge(ctx context.Context, payload teamChallengePayload) error {
	if payload.SalonID == uuid.Nil {
		return fmt.Errorf("salon id missing")
	}
	members, err := c.roster.ListMembers(ctx, payload.SalonID)
	if err != nil {
		return err
	}
	for _, member := range members {
		if member.UserID == nil || member.InvitationStatus != enums.InvitationStatusAccepted {
			continue
		}
		err := c.repo.Create(ctx, &models.Notification{
			UserID:  *member.UserID,
			Type:    enums.NotificationTeamChallenge,
			Title:   "New team challenge",
			Message: fmt.Sprintf("Your salon assigned a new challenge: %s.", payload.Title),
			Link:    stringPtr("/salon/challenges"),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Consumer) notifyTrialExpiring(ctx context.Context, payload trialExpiringPayload) error {
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}
	return c.repo.Create(ctx, &models.Notification{
		UserID:  payload.UserID,
		Type:    enums.NotificationTrialExpiring,
		Title:   "Your trial is ending soon",
		Message: fmt.Sprintf("Your free trial ends in %d days. Upgrade to keep your full calendar.", payload.DaysLeft),
		Link:    stringPtr("/billing"),
	})
}

func stringPtr(value string) *string {
	return &value
}

type milestonePayload struct {
	UserID    uuid.UUID `json:"userId"`
	Days      int       `json:"days"`
	Milestone string    `json:"milestone"`
}

type challengeCompletedPayload struct {
	UserID      uuid.UUID `json:"userId"`
	ChallengeID uuid.UUID `json:"challengeId"`
	Title       string    `json:"title"`
	RewardBadge string    `json:"rewardBadge,omitempty"`
}

type invitationAcceptedPayload struct {
	SalonID     uuid.UUID `json:"salonId"`
	OwnerUserID uuid.UUID `json:"ownerUserId"`
	Email       string    `json:"email"`
}

type teamChallengePayload struct {
	SalonID     uuid.UUID `json:"salonId"`
	ChallengeID uuid.UUID `json:"challengeId"`
	Title       string    `json:"title"`
}

type trialExpiringPayload struct {
	UserID   uuid.UUID `json:"userId"`
	DaysLeft int       `json:"daysLeft"`
}

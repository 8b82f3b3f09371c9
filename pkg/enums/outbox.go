package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateStreak       OutboxAggregateType = "streak"
	AggregateChallenge    OutboxAggregateType = "challenge"
	AggregateSalon        OutboxAggregateType = "salon"
	AggregateSubscription OutboxAggregateType = "subscription"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateStreak,
	AggregateChallenge,
	AggregateSalon,
	AggregateSubscription,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventStreakLogged           OutboxEventType = "streak_logged"
	EventStreakMilestoneReached OutboxEventType = "streak_milestone_reached"
	EventChallengeCompleted     OutboxEventType = "challenge_completed"
	EventTeamChallengeAssigned  OutboxEventType = "team_challenge_assigned"
	EventInvitationAccepted     OutboxEventType = "invitation_accepted"
	EventSubscriptionUpdated    OutboxEventType = "subscription_updated"
	EventTrialExpiringSoon      OutboxEventType = "trial_expiring_soon"
)

var validOutboxEventTypes = []OutboxEventType{
	EventStreakLogged,
	EventStreakMilestoneReached,
	EventChallengeCompleted,
	EventTeamChallengeAssigned,
	EventInvitationAccepted,
	EventSubscriptionUpdated,
	EventTrialExpiringSoon,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

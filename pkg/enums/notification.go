package enums

import "fmt"

// NotificationType categorizes in-app notifications.
type NotificationType string

const (
	NotificationStreakMilestone    NotificationType = "streak_milestone"
	NotificationChallengeCompleted NotificationType = "challenge_completed"
	NotificationTeamChallenge      NotificationType = "team_challenge_assigned"
	NotificationInviteAccepted     NotificationType = "invitation_accepted"
	NotificationTrialExpiring      NotificationType = "trial_expiring"
)

var validNotificationTypes = []NotificationType{
	NotificationStreakMilestone,
	NotificationChallengeCompleted,
	NotificationTeamChallenge,
	NotificationInviteAccepted,
	NotificationTrialExpiring,
}

// IsValid reports whether the value is known.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

package enums

import "fmt"

// InvitationStatus tracks a salon seat invitation through its lifecycle.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRevoked  InvitationStatus = "revoked"
	InvitationStatusExpired  InvitationStatus = "expired"
)

var validInvitationStatuses = []InvitationStatus{
	InvitationStatusPending,
	InvitationStatusAccepted,
	InvitationStatusRevoked,
	InvitationStatusExpired,
}

// IsValid reports whether the value is known.
func (s InvitationStatus) IsValid() bool {
	for _, candidate := range validInvitationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseInvitationStatus converts raw input into an InvitationStatus.
func ParseInvitationStatus(value string) (InvitationStatus, error) {
	for _, candidate := range validInvitationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invitation status %q", value)
}

package enums

import "fmt"

// ChallengeStatus tracks a challenge instance; completed and abandoned are terminal.
type ChallengeStatus string

const (
	ChallengeStatusActive    ChallengeStatus = "active"
	ChallengeStatusCompleted ChallengeStatus = "completed"
	ChallengeStatusAbandoned ChallengeStatus = "abandoned"
)

var validChallengeStatuses = []ChallengeStatus{
	ChallengeStatusActive,
	ChallengeStatusCompleted,
	ChallengeStatusAbandoned,
}

// String implements fmt.Stringer.
func (s ChallengeStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s ChallengeStatus) IsValid() bool {
	for _, candidate := range validChallengeStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s ChallengeStatus) IsTerminal() bool {
	return s == ChallengeStatusCompleted || s == ChallengeStatusAbandoned
}

// ParseChallengeStatus converts raw input into a ChallengeStatus.
func ParseChallengeStatus(value string) (ChallengeStatus, error) {
	for _, candidate := range validChallengeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid challenge status %q", value)
}

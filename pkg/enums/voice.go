package enums

import "fmt"

// Voice controls whether generated copy speaks as an individual or a salon.
type Voice string

const (
	VoiceSoloStylist Voice = "solo_stylist"
	VoiceSalon       Voice = "salon"
)

var validVoices = []Voice{VoiceSoloStylist, VoiceSalon}

// IsValid reports whether the value is known.
func (v Voice) IsValid() bool {
	for _, candidate := range validVoices {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVoice converts raw input into a Voice.
func ParseVoice(value string) (Voice, error) {
	for _, candidate := range validVoices {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid voice %q", value)
}

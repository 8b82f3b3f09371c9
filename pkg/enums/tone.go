package enums

import "fmt"

// Tone adjusts the register of generated captions.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneNeutral      Tone = "neutral"
	ToneInformal     Tone = "informal"
)

var validTones = []Tone{ToneProfessional, ToneNeutral, ToneInformal}

// IsValid reports whether the value is known.
func (t Tone) IsValid() bool {
	for _, candidate := range validTones {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTone converts raw input into a Tone.
func ParseTone(value string) (Tone, error) {
	for _, candidate := range validTones {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tone %q", value)
}

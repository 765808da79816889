package tts

import (
	"errors"
	"fmt"
)

// Speaking rate bounds shared by every engine.
const (
	MinRate = 0.5
	MaxRate = 2.0
)

// ErrRateOutOfRange is returned when a rate is outside MinRate..MaxRate.
var ErrRateOutOfRange = errors.New("rate must be between 0.5 and 2.0")

// ValidateRate reports whether rate can be passed to an engine.
func ValidateRate(rate float64) error {
	if rate < MinRate || rate > MaxRate {
		return fmt.Errorf("%w, got %.2f", ErrRateOutOfRange, rate)
	}
	return nil
}

// ClampRate forces rate into MinRate..MaxRate.
func ClampRate(rate float64) float64 {
	return min(max(rate, MinRate), MaxRate)
}

// ToPiperScale converts a rate to Piper's --length-scale argument.
// Piper scales duration, so a faster rate is a smaller scale.
func ToPiperScale(rate float64) string {
	return fmt.Sprintf("%.2f", 1.0/ClampRate(rate))
}

// ToGTTSSlow reports whether gTTS should use its slow mode. gTTS only knows
// normal and slow, anything below 0.8 counts as slow.
func ToGTTSSlow(rate float64) bool {
	return rate < 0.8
}

// RateDisplay returns a short label such as "0.98x".
func RateDisplay(rate float64) string {
	return fmt.Sprintf("%.2gx", rate)
}

package tts

import (
	"github.com/dgnsrekt/vokabel/internal/tts/engines"
)

// rateSteps are the rates offered by the faster/slower keys.
var rateSteps = []float64{0.5, 0.75, 0.9, 1.0, 1.25, 1.5, 1.75, 2.0}

// ValidateRate checks a rate multiplier.
func ValidateRate(rate float64) error {
	if rate < engines.MinRate || rate > engines.MaxRate {
		return ErrInvalidRate
	}
	return nil
}

// FasterRate returns the next rate step above current.
func FasterRate(current float64) float64 {
	for _, r := range rateSteps {
		if r > current {
			return r
		}
	}
	return current
}

// SlowerRate returns the next rate step below current.
func SlowerRate(current float64) float64 {
	for i := len(rateSteps) - 1; i >= 0; i-- {
		if rateSteps[i] < current {
			return rateSteps[i]
		}
	}
	return current
}

package engines

import (
	"fmt"
	"math"
)

const (
	MinRate = 0.5
	MaxRate = 2.0

	// espeakDefaultWPM is espeak-ng's default speaking rate.
	espeakDefaultWPM = 175
)

// ClampRate limits a rate multiplier to [MinRate, MaxRate]. Zero means 1.
func ClampRate(rate float64) float64 {
	if rate == 0 {
		return 1
	}
	return math.Max(MinRate, math.Min(MaxRate, rate))
}

// piperLengthScale converts a rate to Piper's inverse length scale.
func piperLengthScale(rate float64) string {
	return fmt.Sprintf("%.2f", 1.0/ClampRate(rate))
}

// espeakWPM converts a rate to espeak-ng words per minute.
func espeakWPM(rate float64) int {
	return int(math.Round(espeakDefaultWPM * ClampRate(rate)))
}

// espeakPitch converts a pitch multiplier (1 = default) to espeak-ng's 0-99 scale.
func espeakPitch(pitch float64) int {
	if pitch == 0 {
		pitch = 1
	}
	return int(math.Max(0, math.Min(99, math.Round(50*pitch))))
}

// atempoFilter returns the ffmpeg filter for a rate, or "" at normal speed.
func atempoFilter(rate float64) string {
	rate = ClampRate(rate)
	if rate == 1 {
		return ""
	}
	return fmt.Sprintf("atempo=%.2f", rate)
}

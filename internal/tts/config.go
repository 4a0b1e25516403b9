package tts

import (
	"time"

	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

// Config holds speech settings.
type Config struct {
	Engine ttypes.EngineType

	// Voice parameters applied to every utterance.
	Rate   float64
	Pitch  float64
	Volume float64

	// Pause between the word and the example of an entry.
	Pause time.Duration

	// Voices maps locales to engine-specific voice names.
	Voices map[ttypes.Locale]string

	Piper PiperConfig
	GTTS  GTTSConfig
}

// PiperConfig contains Piper engine configuration.
type PiperConfig struct {
	Models  map[ttypes.Locale]string
	Speaker string
}

// GTTSConfig contains gTTS engine configuration.
type GTTSConfig struct {
	RequestsPerMinute int
}

// DefaultConfig returns the reader's default speech settings.
func DefaultConfig() Config {
	u := ttypes.DefaultUtterance("", ttypes.LocaleGerman)
	return Config{
		Engine: ttypes.EngineESpeak,
		Rate:   u.Rate,
		Pitch:  u.Pitch,
		Volume: u.Volume,
		Pause:  500 * time.Millisecond,
		GTTS:   GTTSConfig{RequestsPerMinute: 50},
	}
}

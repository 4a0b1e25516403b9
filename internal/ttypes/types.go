// Package ttypes contains shared types and interfaces for the speech system.
// This package is used to break import cycles between tts, engines, audio, and cache packages.
package ttypes

import (
	"context"
	"time"
)

// EngineType represents the TTS engine selection
type EngineType string

const (
	// EngineESpeak represents the espeak-ng offline engine
	EngineESpeak EngineType = "espeak"

	// EnginePiper represents the Piper offline neural engine
	EnginePiper EngineType = "piper"

	// EngineGoogle represents Google Translate TTS via gtts-cli
	EngineGoogle EngineType = "gtts"

	// EngineMock represents the silent engine used for dry runs and tests
	EngineMock EngineType = "mock"

	// EngineNone represents no engine selected
	EngineNone EngineType = ""
)

// Locale is a BCP 47 voice locale. Only two are used by the reader.
type Locale string

const (
	// LocaleGerman is used for words and example sentences.
	LocaleGerman Locale = "de-DE"

	// LocaleEnglish is used for meanings.
	LocaleEnglish Locale = "en-US"
)

// Language returns the primary language subtag ("de" for "de-DE").
func (l Locale) Language() string {
	s := string(l)
	for i := 0; i < len(s); i++ {
		if s[i] == '-' || s[i] == '_' {
			return s[:i]
		}
	}
	return s
}

// Utterance is a single text-to-speech request.
type Utterance struct {
	Text   string
	Locale Locale
	Rate   float64 // 1.0 = engine default speed
	Pitch  float64 // 1.0 = engine default pitch
	Volume float64 // 0.0 to 1.0
}

// DefaultUtterance returns an utterance with the reader's default voice parameters.
func DefaultUtterance(text string, locale Locale) Utterance {
	return Utterance{
		Text:   text,
		Locale: locale,
		Rate:   0.9,
		Pitch:  1,
		Volume: 1,
	}
}

// Audio is synthesized signed 16-bit little-endian PCM.
type Audio struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// Duration returns the playing time of the audio.
func (a *Audio) Duration() time.Duration {
	if a == nil || a.SampleRate <= 0 || a.Channels <= 0 {
		return 0
	}
	frames := len(a.PCM) / (2 * a.Channels)
	return time.Duration(frames) * time.Second / time.Duration(a.SampleRate)
}

// EngineInfo describes engine capabilities and configuration.
type EngineInfo struct {
	Name        string // Engine name (e.g., "piper", "espeak")
	SampleRate  int    // Audio sample rate in Hz
	Channels    int    // Number of audio channels (1=mono, 2=stereo)
	MaxTextSize int    // Maximum text size in characters
	IsOnline    bool   // Whether the engine requires internet
}

// Synthesizer defines the contract for text-to-speech engines.
type Synthesizer interface {
	// Synthesize converts an utterance to PCM audio.
	Synthesize(ctx context.Context, u Utterance) (*Audio, error)

	// Info returns engine capabilities and configuration.
	Info() EngineInfo

	// Validate checks if the engine is properly configured and available.
	Validate() error

	// Close releases any resources held by the engine.
	Close() error
}

// AudioPlayer defines the contract for audio playback.
type AudioPlayer interface {
	// Play starts playback of audio data. It returns once playback has started.
	Play(audio *Audio) error

	// Stop stops playback immediately.
	Stop() error

	// IsPlaying returns whether audio is currently playing.
	IsPlaying() bool

	// SetVolume sets the playback volume (0.0 to 1.0).
	SetVolume(volume float64) error

	// Close releases audio device and resources.
	Close() error
}

// AudioCache defines the contract for caching synthesized audio.
type AudioCache interface {
	// Get retrieves cached audio for the given key.
	Get(key string) ([]byte, bool)

	// Put stores audio data with the given key.
	Put(key string, audio []byte) error

	// Clear removes all cached entries.
	Clear() error

	// Close flushes and releases the cache.
	Close() error
}

package engines

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

// ESpeakConfig holds configuration for the espeak-ng engine.
type ESpeakConfig struct {
	// Binary defaults to "espeak-ng".
	Binary string

	// Voices maps locales to espeak-ng voice names. Missing locales fall
	// back to DefaultESpeakVoices.
	Voices map[ttypes.Locale]string

	// Timeout bounds a single synthesis (default 10s).
	Timeout time.Duration
}

// DefaultESpeakVoices are the espeak-ng voices used for the reader's locales.
var DefaultESpeakVoices = map[ttypes.Locale]string{
	ttypes.LocaleGerman:  "de",
	ttypes.LocaleEnglish: "en-us",
}

// ESpeakEngine synthesizes speech with the espeak-ng command line tool,
// reading a WAV stream from its stdout.
type ESpeakEngine struct {
	binary  string
	voices  map[ttypes.Locale]string
	timeout time.Duration

	mu         sync.RWMutex
	sampleRate int // learned from the first WAV header
}

var _ ttypes.Synthesizer = (*ESpeakEngine)(nil)

// NewESpeakEngine creates an espeak-ng engine.
func NewESpeakEngine(config ESpeakConfig) *ESpeakEngine {
	if config.Binary == "" {
		config.Binary = "espeak-ng"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	voices := make(map[ttypes.Locale]string, len(DefaultESpeakVoices))
	for l, v := range DefaultESpeakVoices {
		voices[l] = v
	}
	for l, v := range config.Voices {
		if v != "" {
			voices[l] = v
		}
	}

	return &ESpeakEngine{
		binary:     config.Binary,
		voices:     voices,
		timeout:    config.Timeout,
		sampleRate: 22050,
	}
}

// Voice returns the espeak-ng voice used for a locale.
func (e *ESpeakEngine) Voice(locale ttypes.Locale) string {
	if v, ok := e.voices[locale]; ok {
		return v
	}
	return locale.Language()
}

// Synthesize converts an utterance to PCM.
func (e *ESpeakEngine) Synthesize(ctx context.Context, u ttypes.Utterance) (*ttypes.Audio, error) {
	if u.Text == "" {
		return nil, errors.New("text cannot be empty")
	}

	args := []string{
		"-v", e.Voice(u.Locale),
		"-s", strconv.Itoa(espeakWPM(u.Rate)),
		"-p", strconv.Itoa(espeakPitch(u.Pitch)),
		"--stdout",
		u.Text,
	}

	log.Debug("espeak-ng synthesize", "voice", args[1], "wpm", args[3], "chars", len(u.Text))

	out, err := runCommand(ctx, e.timeout, nil, e.binary, args...)
	if err != nil {
		return nil, err
	}

	audio, err := decodeWAV(out)
	if err != nil {
		return nil, fmt.Errorf("espeak-ng output: %w", err)
	}

	e.mu.Lock()
	e.sampleRate = audio.SampleRate
	e.mu.Unlock()

	return audio, nil
}

// Info returns engine capabilities.
func (e *ESpeakEngine) Info() ttypes.EngineInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return ttypes.EngineInfo{
		Name:        string(ttypes.EngineESpeak),
		SampleRate:  e.sampleRate,
		Channels:    1,
		MaxTextSize: 5000,
		IsOnline:    false,
	}
}

// Validate checks that espeak-ng is installed and runs.
func (e *ESpeakEngine) Validate() error {
	path, err := lookPath(e.binary)
	if err != nil {
		return err
	}
	if _, err := runCommand(context.Background(), e.timeout, nil, path, "--version"); err != nil {
		return fmt.Errorf("cannot execute espeak-ng: %w", err)
	}
	return nil
}

// Close is a no-op; each synthesis runs its own process.
func (e *ESpeakEngine) Close() error { return nil }

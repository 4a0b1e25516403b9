package tts

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

var (
	// ErrNoEngineConfigured indicates no speech engine has been selected
	ErrNoEngineConfigured = errors.New("no speech engine configured")

	// ErrEngineNotAvailable indicates the selected engine cannot run
	ErrEngineNotAvailable = errors.New("selected speech engine is not available")

	// ErrInvalidEngine indicates an unknown engine was specified
	ErrInvalidEngine = errors.New("invalid speech engine specified")

	// ErrAudioDeviceUnavailable indicates the audio device cannot be opened
	ErrAudioDeviceUnavailable = errors.New("audio device unavailable")

	// ErrInvalidRate indicates a rate outside the supported range
	ErrInvalidRate = errors.New("rate must be between 0.5 and 2.0")

	// ErrTextTooLong indicates the text exceeds the engine's limit
	ErrTextTooLong = errors.New("text too long for engine")
)

// SpeechError records which part of the speech pipeline failed.
type SpeechError struct {
	Err       error
	Component string // "engine", "audio", "cache"
	Action    string // "synthesize", "play", ...
}

func (e *SpeechError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Component, e.Action, e.Err)
}

func (e *SpeechError) Unwrap() error {
	return e.Err
}

// IsRecoverableError reports whether speaking again may succeed. Missing
// engines and audio devices are not recoverable; a failed or canceled
// utterance is.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch {
	case errors.Is(err, ErrEngineNotAvailable),
		errors.Is(err, ErrAudioDeviceUnavailable),
		errors.Is(err, ErrNoEngineConfigured),
		errors.Is(err, ErrInvalidEngine),
		errors.Is(err, exec.ErrNotFound):
		return false
	}
	return true
}

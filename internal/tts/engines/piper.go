package engines

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

// ErrNoModel is returned when no Piper model is configured for a locale.
var ErrNoModel = errors.New("no piper model configured for locale")

// PiperConfig holds configuration for the Piper engine.
type PiperConfig struct {
	// Binary defaults to "piper".
	Binary string

	// Models maps locales to .onnx voice model paths. Each model's config
	// is expected next to it with a .json (or .onnx.json) extension.
	Models map[ttypes.Locale]string

	// Speaker selects a speaker id in multi-speaker models.
	Speaker string

	// SampleRate of the models (default 22050).
	SampleRate int

	// Timeout bounds a single synthesis (default 10s).
	Timeout time.Duration
}

// PiperEngine synthesizes speech with Piper, one process per utterance. The
// text is fed on stdin before the process starts.
type PiperEngine struct {
	binary     string
	models     map[ttypes.Locale]string
	speaker    string
	sampleRate int
	timeout    time.Duration
}

var _ ttypes.Synthesizer = (*PiperEngine)(nil)

// NewPiperEngine creates a Piper engine. At least one model is required.
func NewPiperEngine(config PiperConfig) (*PiperEngine, error) {
	if len(config.Models) == 0 {
		return nil, errors.New("at least one piper model path is required")
	}
	if config.Binary == "" {
		config.Binary = "piper"
	}
	if config.SampleRate == 0 {
		config.SampleRate = 22050
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &PiperEngine{
		binary:     config.Binary,
		models:     config.Models,
		speaker:    config.Speaker,
		sampleRate: config.SampleRate,
		timeout:    config.Timeout,
	}, nil
}

// Model returns the model path for a locale.
func (e *PiperEngine) Model(locale ttypes.Locale) (string, error) {
	model, ok := e.models[locale]
	if !ok || model == "" {
		return "", fmt.Errorf("%w: %s", ErrNoModel, locale)
	}
	return model, nil
}

// Synthesize converts an utterance to PCM.
func (e *PiperEngine) Synthesize(ctx context.Context, u ttypes.Utterance) (*ttypes.Audio, error) {
	if u.Text == "" {
		return nil, errors.New("text cannot be empty")
	}

	model, err := e.Model(u.Locale)
	if err != nil {
		return nil, err
	}

	args := []string{
		"--model", model,
		"--output-raw",
		"--length-scale", piperLengthScale(u.Rate),
	}
	if cfg := modelConfigPath(model); cfg != "" {
		args = append(args, "--config", cfg)
	}
	if e.speaker != "" {
		args = append(args, "--speaker", e.speaker)
	}

	log.Debug("piper synthesize", "model", filepath.Base(model), "chars", len(u.Text))

	pcm, err := runCommand(ctx, e.timeout, []byte(u.Text), e.binary, args...)
	if err != nil {
		return nil, err
	}

	return &ttypes.Audio{
		PCM:        pcm[:len(pcm)/2*2],
		SampleRate: e.sampleRate,
		Channels:   1,
	}, nil
}

// modelConfigPath finds a model's JSON config, or returns "".
func modelConfigPath(model string) string {
	candidates := []string{
		model + ".json",
		strings.TrimSuffix(model, filepath.Ext(model)) + ".json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Info returns engine capabilities.
func (e *PiperEngine) Info() ttypes.EngineInfo {
	return ttypes.EngineInfo{
		Name:        string(ttypes.EnginePiper),
		SampleRate:  e.sampleRate,
		Channels:    1,
		MaxTextSize: 5000,
		IsOnline:    false,
	}
}

// Validate checks that piper is installed and every model exists.
func (e *PiperEngine) Validate() error {
	if _, err := lookPath(e.binary); err != nil {
		return err
	}
	for locale, model := range e.models {
		if _, err := os.Stat(model); err != nil {
			return fmt.Errorf("model for %s not accessible: %w", locale, err)
		}
	}
	return nil
}

// Close is a no-op; each synthesis runs its own process.
func (e *PiperEngine) Close() error { return nil }

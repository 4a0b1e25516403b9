package engines

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

// GTTSConfig holds configuration for the gTTS engine.
type GTTSConfig struct {
	// Binaries default to "gtts-cli" and "ffmpeg".
	Binary       string
	FFmpegBinary string

	// Voices maps locales to gTTS language codes (default: the locale's
	// language subtag).
	Voices map[ttypes.Locale]string

	// SampleRate of the converted PCM (default 24000).
	SampleRate int

	// RequestsPerMinute throttles calls to Google (default 50).
	RequestsPerMinute int
}

// GTTSEngine synthesizes speech through Google Translate using gtts-cli,
// converting the MP3 to PCM with ffmpeg. Requests are rate limited to avoid
// being blocked.
type GTTSEngine struct {
	binary     string
	ffmpeg     string
	voices     map[ttypes.Locale]string
	sampleRate int
	limiter    *rate.Limiter
}

var _ ttypes.Synthesizer = (*GTTSEngine)(nil)

// NewGTTSEngine creates a gTTS engine.
func NewGTTSEngine(config GTTSConfig) *GTTSEngine {
	if config.Binary == "" {
		config.Binary = "gtts-cli"
	}
	if config.FFmpegBinary == "" {
		config.FFmpegBinary = "ffmpeg"
	}
	if config.SampleRate == 0 {
		config.SampleRate = 24000
	}
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 50
	}

	return &GTTSEngine{
		binary:     config.Binary,
		ffmpeg:     config.FFmpegBinary,
		voices:     config.Voices,
		sampleRate: config.SampleRate,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1),
	}
}

// Language returns the gTTS language code for a locale.
func (e *GTTSEngine) Language(locale ttypes.Locale) string {
	if v, ok := e.voices[locale]; ok && v != "" {
		return v
	}
	return locale.Language()
}

// Synthesize converts an utterance to PCM: text → gtts-cli → MP3 → ffmpeg → PCM.
func (e *GTTSEngine) Synthesize(ctx context.Context, u ttypes.Utterance) (*ttypes.Audio, error) {
	if u.Text == "" {
		return nil, errors.New("text cannot be empty")
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	log.Debug("gtts synthesize", "lang", e.Language(u.Locale), "chars", len(u.Text))

	mp3, err := runCommand(ctx, 30*time.Second, nil, e.binary, u.Text, "-l", e.Language(u.Locale), "-o", "-")
	if err != nil {
		return nil, fmt.Errorf("MP3 generation failed: %w", err)
	}

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprint(e.sampleRate),
		"-ac", "1",
	}
	if filter := atempoFilter(u.Rate); filter != "" {
		args = append(args, "-filter:a", filter)
	}
	args = append(args, "pipe:1")

	pcm, err := runCommand(ctx, 15*time.Second, mp3, e.ffmpeg, args...)
	if err != nil {
		return nil, fmt.Errorf("MP3 to PCM conversion failed: %w", err)
	}

	return &ttypes.Audio{
		PCM:        pcm[:len(pcm)/2*2],
		SampleRate: e.sampleRate,
		Channels:   1,
	}, nil
}

// Info returns engine capabilities.
func (e *GTTSEngine) Info() ttypes.EngineInfo {
	return ttypes.EngineInfo{
		Name:        string(ttypes.EngineGoogle),
		SampleRate:  e.sampleRate,
		Channels:    1,
		MaxTextSize: 5000,
		IsOnline:    true,
	}
}

// Validate checks that gtts-cli and ffmpeg are installed.
func (e *GTTSEngine) Validate() error {
	if _, err := lookPath(e.binary); err != nil {
		return fmt.Errorf("%w\n\nInstall with: pip install gtts", err)
	}
	if _, err := lookPath(e.ffmpeg); err != nil {
		return fmt.Errorf("%w\n\nInstall ffmpeg for audio conversion", err)
	}
	return nil
}

// Close is a no-op.
func (e *GTTSEngine) Close() error { return nil }

package tts

import (
	"fmt"
	"strings"

	"github.com/dgnsrekt/vokabel/internal/tts/engines"
	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

// ValidateEngineSelection resolves the engine from the CLI argument, then
// the config.
func ValidateEngineSelection(cliArg string, config Config) (ttypes.EngineType, error) {
	engine := strings.ToLower(strings.TrimSpace(cliArg))
	if engine == "" {
		engine = strings.ToLower(string(config.Engine))
	}

	switch engine {
	case "":
		return ttypes.EngineNone, fmt.Errorf("%w\n\nPlease specify an engine:\n  vokabel --engine espeak words.csv   # espeak-ng (offline)\n  vokabel --engine piper words.csv    # Piper (offline)\n  vokabel --engine gtts words.csv     # Google TTS (online)", ErrNoEngineConfigured)
	case "espeak", "espeak-ng":
		return ttypes.EngineESpeak, nil
	case "piper":
		return ttypes.EnginePiper, nil
	case "gtts", "google":
		return ttypes.EngineGoogle, nil
	case "mock", "none", "silent":
		return ttypes.EngineMock, nil
	default:
		return ttypes.EngineNone, fmt.Errorf("%w: %s\n\nSupported engines:\n  - espeak (espeak-ng, offline)\n  - piper (offline)\n  - gtts (Google TTS, online)\n  - mock (silent)", ErrInvalidEngine, engine)
	}
}

// NewEngine builds the synthesizer for config.Engine.
func NewEngine(config Config) (ttypes.Synthesizer, error) {
	switch config.Engine {
	case ttypes.EngineESpeak:
		return engines.NewESpeakEngine(engines.ESpeakConfig{Voices: config.Voices}), nil
	case ttypes.EnginePiper:
		e, err := engines.NewPiperEngine(engines.PiperConfig{
			Models:  config.Piper.Models,
			Speaker: config.Piper.Speaker,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w\n\n%s", ErrEngineNotAvailable, err, piperModelGuidance)
		}
		return e, nil
	case ttypes.EngineGoogle:
		return engines.NewGTTSEngine(engines.GTTSConfig{
			Voices:            config.Voices,
			RequestsPerMinute: config.GTTS.RequestsPerMinute,
		}), nil
	case ttypes.EngineMock:
		return engines.NewMockEngine(), nil
	case ttypes.EngineNone:
		return nil, ErrNoEngineConfigured
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidEngine, config.Engine)
	}
}

// CheckEngine reports whether an engine can run, adding install guidance
// to the error.
func CheckEngine(engine ttypes.Synthesizer) error {
	if err := engine.Validate(); err != nil {
		return fmt.Errorf("%w: %w\n\n%s", ErrEngineNotAvailable, err, guidanceFor(engine.Info().Name))
	}
	return nil
}

func guidanceFor(name string) string {
	switch ttypes.EngineType(name) {
	case ttypes.EngineESpeak:
		return espeakInstallGuidance
	case ttypes.EnginePiper:
		return piperModelGuidance
	case ttypes.EngineGoogle:
		return gttsInstallGuidance
	default:
		return "Check the speech engine installation."
	}
}

const espeakInstallGuidance = `espeak-ng is not installed. To install:

  # Ubuntu/Debian
  sudo apt install espeak-ng

  # macOS (Homebrew)
  brew install espeak-ng`

const piperModelGuidance = `Piper needs a voice model per language. To configure:

1. Download voices from https://github.com/rhasspy/piper/blob/master/VOICES.md
   (for example de_DE-thorsten-medium and en_US-amy-medium)

2. Point vokabel at them in vokabel.yml:
   speech:
     engine: piper
     piper:
       models:
         de-DE: ~/.local/share/piper/de_DE-thorsten-medium.onnx
         en-US: ~/.local/share/piper/en_US-amy-medium.onnx`

const gttsInstallGuidance = `gTTS needs gtts-cli and ffmpeg. To install:

  pipx install gtts
  sudo apt install ffmpeg   # or: brew install ffmpeg

gTTS requires an internet connection.`

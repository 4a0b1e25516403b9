package tts

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgnsrekt/vokabel/internal/tts/engines"
	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

func TestValidateEngineSelection(t *testing.T) {
	tests := []struct {
		name    string
		cliArg  string
		config  Config
		want    ttypes.EngineType
		wantErr error
	}{
		{"CLI arg takes precedence", "piper", Config{Engine: ttypes.EngineGoogle}, ttypes.EnginePiper, nil},
		{"google alias", "google", Config{}, ttypes.EngineGoogle, nil},
		{"espeak-ng alias", "espeak-ng", Config{}, ttypes.EngineESpeak, nil},
		{"case insensitive", " ESPEAK ", Config{}, ttypes.EngineESpeak, nil},
		{"config when no CLI arg", "", Config{Engine: ttypes.EngineGoogle}, ttypes.EngineGoogle, nil},
		{"silent alias", "none", Config{}, ttypes.EngineMock, nil},
		{"nothing configured", "", Config{}, ttypes.EngineNone, ErrNoEngineConfigured},
		{"blank CLI arg", "  ", Config{}, ttypes.EngineNone, ErrNoEngineConfigured},
		{"invalid engine", "festival", Config{}, ttypes.EngineNone, ErrInvalidEngine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateEngineSelection(tt.cliArg, tt.config)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateEngineSelection_ErrorMessages(t *testing.T) {
	_, err := ValidateEngineSelection("festival", Config{})
	for _, want := range []string{"festival", "espeak", "piper", "gtts"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestNewEngine(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantErr  error
	}{
		{"espeak", Config{Engine: ttypes.EngineESpeak}, "espeak", nil},
		{"gtts", Config{Engine: ttypes.EngineGoogle}, "gtts", nil},
		{"mock", Config{Engine: ttypes.EngineMock}, "mock", nil},
		{"piper without models", Config{Engine: ttypes.EnginePiper}, "", ErrEngineNotAvailable},
		{"none", Config{}, "", ErrNoEngineConfigured},
		{"unknown", Config{Engine: "festival"}, "", ErrInvalidEngine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(tt.config)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && engine.Info().Name != tt.wantName {
				t.Errorf("engine = %s, want %s", engine.Info().Name, tt.wantName)
			}
		})
	}
}

func TestCheckEngine(t *testing.T) {
	ok := engines.NewMockEngine()
	if err := CheckEngine(ok); err != nil {
		t.Errorf("CheckEngine(mock) = %v", err)
	}

	broken := engines.NewMockEngine()
	broken.ValidateErr = errors.New("missing")
	err := CheckEngine(broken)
	if !errors.Is(err, ErrEngineNotAvailable) {
		t.Errorf("expected ErrEngineNotAvailable, got %v", err)
	}
	if IsRecoverableError(err) {
		t.Error("unavailable engine should not be recoverable")
	}
}

func TestRateSteps(t *testing.T) {
	tests := []struct {
		current, faster, slower float64
	}{
		{0.9, 1.0, 0.75},
		{0.5, 0.75, 0.5},
		{2.0, 2.0, 1.75},
		{1.1, 1.25, 1.0},
	}
	for _, tt := range tests {
		if got := FasterRate(tt.current); got != tt.faster {
			t.Errorf("FasterRate(%v) = %v, want %v", tt.current, got, tt.faster)
		}
		if got := SlowerRate(tt.current); got != tt.slower {
			t.Errorf("SlowerRate(%v) = %v, want %v", tt.current, got, tt.slower)
		}
	}
}

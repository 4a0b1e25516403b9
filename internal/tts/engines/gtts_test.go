package engines

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

func TestGTTSEngine_Synthesize(t *testing.T) {
	dir := t.TempDir()
	gttsArgs := filepath.Join(dir, "gtts-args")
	ffmpegArgs := filepath.Join(dir, "ffmpeg-args")

	gtts := fakeBinary(t, "gtts-cli", `echo "$@" > `+gttsArgs+`; printf MP3DATA`)
	ffmpeg := fakeBinary(t, "ffmpeg", `echo "$@" > `+ffmpegArgs+`; cat`)

	engine := NewGTTSEngine(GTTSConfig{Binary: gtts, FFmpegBinary: ffmpeg})

	u := ttypes.DefaultUtterance("dog", ttypes.LocaleEnglish)
	audio, err := engine.Synthesize(context.Background(), u)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	// "MP3DATA" is 7 bytes, trimmed to whole samples.
	if string(audio.PCM) != "MP3DAT" {
		t.Errorf("PCM = %q", audio.PCM)
	}

	args, _ := os.ReadFile(gttsArgs)
	if got := strings.TrimSpace(string(args)); got != "dog -l en -o -" {
		t.Errorf("gtts-cli args = %q", got)
	}
	args, _ = os.ReadFile(ffmpegArgs)
	if !strings.Contains(string(args), "atempo=0.90") || !strings.Contains(string(args), "-ar 24000") {
		t.Errorf("ffmpeg args = %q", args)
	}
}

func TestGTTSEngine_Language(t *testing.T) {
	engine := NewGTTSEngine(GTTSConfig{
		Voices: map[ttypes.Locale]string{ttypes.LocaleEnglish: "en-uk"},
	})

	if got := engine.Language(ttypes.LocaleEnglish); got != "en-uk" {
		t.Errorf("Language(en-US) = %q", got)
	}
	if got := engine.Language(ttypes.LocaleGerman); got != "de" {
		t.Errorf("Language(de-DE) = %q", got)
	}
	if !engine.Info().IsOnline {
		t.Error("gtts should report online")
	}
}

func TestGTTSEngine_RateLimitHonorsContext(t *testing.T) {
	gtts := fakeBinary(t, "gtts-cli", `printf MP3DATA`)
	ffmpeg := fakeBinary(t, "ffmpeg", `cat`)
	engine := NewGTTSEngine(GTTSConfig{Binary: gtts, FFmpegBinary: ffmpeg, RequestsPerMinute: 1})

	u := ttypes.DefaultUtterance("dog", ttypes.LocaleEnglish)
	if _, err := engine.Synthesize(context.Background(), u); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := engine.Synthesize(ctx, u); err == nil {
		t.Error("expected the second request to be throttled past the deadline")
	}
}

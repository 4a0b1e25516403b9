package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgnsrekt/vokabel/internal/progress"
	"github.com/dgnsrekt/vokabel/internal/ttypes"
	"github.com/dgnsrekt/vokabel/internal/vocab"
)

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in      string
		want    ttypes.Locale
		wantErr bool
	}{
		{"de-DE", ttypes.LocaleGerman, false},
		{"de-de", ttypes.LocaleGerman, false},
		{"de", ttypes.LocaleGerman, false},
		{"EN", ttypes.LocaleEnglish, false},
		{"en-us", ttypes.LocaleEnglish, false},
		{"fr-FR", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLocale(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLocale(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseLocale(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLocaleMap(t *testing.T) {
	// viper hands back lowercased keys
	got := localeMap(map[string]string{
		"de-de": "de+f3",
		"en-us": "",
		"xx":    "ignored",
	})

	if len(got) != 1 {
		t.Fatalf("expected 1 locale, got %v", got)
	}
	if got[ttypes.LocaleGerman] != "de+f3" {
		t.Errorf("expected German voice de+f3, got %q", got[ttypes.LocaleGerman])
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("VOKABEL_TEST_DIR", "/tmp/vokabel")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~/words.csv", filepath.Join(home, "words.csv")},
		{"$VOKABEL_TEST_DIR/progress.db", "/tmp/vokabel/progress.db"},
		{"a/../b.csv", "b.csv"},
	}

	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSpeakText(t *testing.T) {
	args := []string{"Hund", "(dog),", "canine"}

	if got := speakText(args, false); got != "Hund" {
		t.Errorf("normalized text = %q, want %q", got, "Hund")
	}
	if got := speakText(args, true); got != "Hund (dog), canine" {
		t.Errorf("raw text = %q", got)
	}
	if got := speakText([]string{"  "}, false); got != "" {
		t.Errorf("blank text = %q, want empty", got)
	}
}

func TestShowProgress(t *testing.T) {
	list := vocab.List{
		{Word: "der Hund", Example: "Der Hund bellt.", Meaning: "dog"},
		{Word: "die Katze", Example: "Die Katze schläft.", Meaning: "cat"},
	}

	t.Run("nothing saved", func(t *testing.T) {
		store := progress.New(progress.NewMemoryBackend())
		var buf bytes.Buffer
		if err := showProgress(&buf, store, list); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "No saved position") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("saved", func(t *testing.T) {
		store := progress.New(progress.NewMemoryBackend())
		store.SetLength(list.Len())
		if err := store.Save(1); err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		if err := showProgress(&buf, store, list); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		if !strings.Contains(out, "2 of 2: die Katze") {
			t.Errorf("unexpected output %q", out)
		}
		if !strings.Contains(out, "saved") {
			t.Errorf("expected saved time in %q", out)
		}
	})

	t.Run("out of bounds for a shorter list", func(t *testing.T) {
		store := progress.New(progress.NewMemoryBackend())
		store.SetLength(5)
		if err := store.Save(4); err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		if err := showProgress(&buf, store, list); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "No saved position") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}

func TestEnsureConfigFile(t *testing.T) {
	old := configFile
	t.Cleanup(func() { configFile = old })

	t.Run("creates default", func(t *testing.T) {
		configFile = filepath.Join(t.TempDir(), "nested", "vokabel.yml")
		if err := ensureConfigFile(); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(configFile)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != defaultConfig {
			t.Error("expected the default config to be written")
		}
	})

	t.Run("keeps existing", func(t *testing.T) {
		configFile = filepath.Join(t.TempDir(), "vokabel.yaml")
		if err := os.WriteFile(configFile, []byte("watch: true\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := ensureConfigFile(); err != nil {
			t.Fatal(err)
		}
		data, _ := os.ReadFile(configFile)
		if string(data) != "watch: true\n" {
			t.Errorf("existing config overwritten: %q", data)
		}
	})

	t.Run("rejects other formats", func(t *testing.T) {
		configFile = filepath.Join(t.TempDir(), "vokabel.toml")
		if err := ensureConfigFile(); err == nil {
			t.Error("expected an error for .toml")
		}
	})
}

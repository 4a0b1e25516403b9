package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/vokabel/internal/audio"
	"github.com/dgnsrekt/vokabel/internal/cache"
	"github.com/dgnsrekt/vokabel/internal/queue"
	"github.com/dgnsrekt/vokabel/internal/tts"
	"github.com/dgnsrekt/vokabel/internal/tts/engines"
	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

const megabyte = 1024 * 1024

// speechStack is everything between an utterance and the audio device.
type speechStack struct {
	engine  ttypes.Synthesizer
	speaker *tts.Speaker
	cache   *cache.Manager

	// unavailable explains why speech cannot run. The stack still works,
	// silently, so the table stays usable.
	unavailable error
}

// speechConfig reads the speech settings from viper.
func speechConfig() tts.Config {
	cfg := tts.DefaultConfig()
	cfg.Engine = speechEngine
	cfg.Rate = viper.GetFloat64("speech.rate")
	cfg.Pitch = viper.GetFloat64("speech.pitch")
	cfg.Volume = viper.GetFloat64("speech.volume")
	cfg.Pause = viper.GetDuration("speech.pause")
	cfg.Voices = localeMap(viper.GetStringMapString("speech.voices"))
	cfg.Piper.Models = localeMap(viper.GetStringMapString("speech.piper.models"))
	for l, model := range cfg.Piper.Models {
		cfg.Piper.Models[l] = expandPath(model)
	}
	cfg.Piper.Speaker = viper.GetString("speech.piper.speaker")
	cfg.GTTS.RequestsPerMinute = viper.GetInt("speech.gtts.requests_per_minute")
	return cfg
}

// cacheConfig reads the audio cache settings from viper.
func cacheConfig() *cache.Config {
	cfg := cache.DefaultConfig()
	cfg.DiskPath = expandPath(viper.GetString("cache.dir"))
	if mb := viper.GetInt64("cache.memory_mb"); mb > 0 {
		cfg.MemoryCapacity = mb * megabyte
	}
	if mb := viper.GetInt64("cache.disk_mb"); mb > 0 {
		cfg.DiskCapacity = mb * megabyte
	}
	return cfg
}

// newSpeechStack builds the engine, audio player, cache and speaker. When
// strict is false, a missing engine or audio device is recorded in
// unavailable and replaced by silent stand-ins.
func newSpeechStack(cfg tts.Config, strict bool) (*speechStack, error) {
	s := &speechStack{}

	engine, err := tts.NewEngine(cfg)
	if err != nil {
		if strict {
			return nil, err //nolint:wrapcheck
		}
		log.Warn("speech engine unavailable", "engine", cfg.Engine, "error", err)
		s.unavailable = err
		engine = engines.NewMockEngine()
	}
	s.engine = engine

	var player ttypes.AudioPlayer
	p, err := audio.NewPlayer(audio.DefaultPlayerConfig())
	if err != nil {
		err = fmt.Errorf("%w: %w", tts.ErrAudioDeviceUnavailable, err)
		if strict {
			_ = engine.Close()
			return nil, err
		}
		log.Warn("audio device unavailable", "error", err)
		s.unavailable = errors.Join(s.unavailable, err)
		player = audio.NewMockPlayer()
	} else {
		player = p
	}

	var audioCache ttypes.AudioCache
	mgr, err := cache.NewManager(cacheConfig())
	if err != nil {
		log.Warn("audio cache disabled", "error", err)
	} else {
		s.cache = mgr
		audioCache = mgr
	}

	s.speaker = tts.NewSpeaker(engine, player, audioCache, cfg)
	return s, nil
}

// check reports whether real speech is possible.
func (s *speechStack) check() error {
	if s.unavailable != nil {
		return s.unavailable
	}
	return tts.CheckEngine(s.engine) //nolint:wrapcheck
}

// prefetcher warms the cache through the speaker.
func (s *speechStack) prefetcher() *queue.Prefetcher {
	return queue.NewPrefetcher(func(ctx context.Context, job queue.Job) error {
		_, err := s.speaker.Synthesize(ctx, job.Text, job.Locale)
		return err //nolint:wrapcheck
	}, queue.DefaultLookahead)
}

func (s *speechStack) Close() error {
	err := s.speaker.Close()
	if s.cache != nil {
		err = errors.Join(err, s.cache.Close())
	}
	return err
}

// localeMap turns a viper map (keys lowercased) into locale keys.
func localeMap(m map[string]string) map[ttypes.Locale]string {
	out := make(map[ttypes.Locale]string, len(m))
	for k, v := range m {
		if v == "" {
			continue
		}
		l, err := parseLocale(k)
		if err != nil {
			log.Warn("ignoring unknown locale", "locale", k)
			continue
		}
		out[l] = v
	}
	return out
}

// parseLocale accepts a full locale or its language ("de", "en-us").
func parseLocale(s string) (ttypes.Locale, error) {
	for _, l := range []ttypes.Locale{ttypes.LocaleGerman, ttypes.LocaleEnglish} {
		if strings.EqualFold(s, string(l)) || strings.EqualFold(s, l.Language()) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unsupported locale %q: use %s or %s", s, ttypes.LocaleGerman, ttypes.LocaleEnglish)
}

// expandPath expands ~ and environment variables.
func expandPath(path string) string {
	if path == "" {
		return ""
	}
	home, err := homedir.Expand(path)
	if err == nil {
		path = home
	}
	return filepath.Clean(os.ExpandEnv(path))
}

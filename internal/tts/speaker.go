package tts

import (
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/vokabel/internal/cache"
	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

// pollInterval is how often playback completion is checked.
const pollInterval = 10 * time.Millisecond

// Speaker speaks one utterance at a time.
type Speaker struct {
	engine ttypes.Synthesizer
	player ttypes.AudioPlayer
	cache  ttypes.AudioCache // optional
	voices map[ttypes.Locale]string

	// playMu serializes access to the audio device.
	playMu sync.Mutex

	mu     sync.RWMutex
	rate   float64
	pitch  float64
	volume float64
}

// NewSpeaker creates a speaker. cache may be nil.
func NewSpeaker(engine ttypes.Synthesizer, player ttypes.AudioPlayer, audioCache ttypes.AudioCache, config Config) *Speaker {
	s := &Speaker{
		engine: engine,
		player: player,
		cache:  audioCache,
		voices: config.Voices,
		rate:   config.Rate,
		pitch:  config.Pitch,
		volume: config.Volume,
	}
	if s.rate == 0 {
		s.rate = 1
	}
	if s.pitch == 0 {
		s.pitch = 1
	}
	return s
}

// Engine returns the engine in use.
func (s *Speaker) Engine() ttypes.Synthesizer { return s.engine }

// Utterance builds an utterance with the speaker's current voice parameters.
func (s *Speaker) Utterance(text string, locale ttypes.Locale) ttypes.Utterance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ttypes.Utterance{
		Text:   text,
		Locale: locale,
		Rate:   s.rate,
		Pitch:  s.pitch,
		Volume: s.volume,
	}
}

// Rate returns the current rate.
func (s *Speaker) Rate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// SetRate changes the rate for subsequent utterances.
func (s *Speaker) SetRate(rate float64) error {
	if err := ValidateRate(rate); err != nil {
		return err
	}
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
	return nil
}

// Speak synthesizes text and blocks until it has played. When ctx is
// canceled playback stops and ctx.Err() is returned. Blank text is a no-op.
func (s *Speaker) Speak(ctx context.Context, text string, locale ttypes.Locale) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	u := s.Utterance(text, locale)

	if limit := s.engine.Info().MaxTextSize; limit > 0 && utf8.RuneCountInString(u.Text) > limit {
		return &SpeechError{Err: ErrTextTooLong, Component: "engine", Action: "synthesize"}
	}

	audio, err := s.synthesize(ctx, u)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &SpeechError{Err: err, Component: "engine", Action: "synthesize"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.playMu.Lock()
	defer s.playMu.Unlock()

	if err := s.player.SetVolume(u.Volume); err != nil {
		log.Debug("set volume", "err", err)
	}
	if err := s.player.Play(audio); err != nil {
		return &SpeechError{Err: err, Component: "audio", Action: "play"}
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.player.Stop(); err != nil {
				log.Debug("stop playback", "err", err)
			}
			return ctx.Err()
		case <-ticker.C:
			if !s.player.IsPlaying() {
				return nil
			}
		}
	}
}

// Synthesize returns the audio for text without playing it, using the cache.
func (s *Speaker) Synthesize(ctx context.Context, text string, locale ttypes.Locale) (*ttypes.Audio, error) {
	return s.synthesize(ctx, s.Utterance(text, locale))
}

func (s *Speaker) synthesize(ctx context.Context, u ttypes.Utterance) (*ttypes.Audio, error) {
	info := s.engine.Info()
	key := cache.GenerateKey(info.Name, s.voices[u.Locale], u)

	if s.cache != nil {
		if data, ok := s.cache.Get(key); ok {
			if audio, err := decodeCached(data); err == nil {
				log.Debug("speech cache hit", "locale", u.Locale, "chars", len(u.Text))
				return audio, nil
			}
		}
	}

	start := time.Now()
	audio, err := s.engine.Synthesize(ctx, u)
	if err != nil {
		return nil, err
	}
	log.Debug("synthesized", "engine", info.Name, "locale", u.Locale, "took", time.Since(start), "audio", audio.Duration())

	if s.cache != nil {
		if err := s.cache.Put(key, encodeCached(audio)); err != nil {
			log.Warn("failed to cache audio", "err", err)
		}
	}
	return audio, nil
}

// Stop stops whatever is playing.
func (s *Speaker) Stop() error {
	return s.player.Stop()
}

// Close releases the engine and player.
func (s *Speaker) Close() error {
	return errors.Join(s.player.Close(), s.engine.Close())
}

// Cached audio carries its format ahead of the PCM.
const cachedHeaderSize = 6

func encodeCached(a *ttypes.Audio) []byte {
	out := make([]byte, cachedHeaderSize+len(a.PCM))
	binary.LittleEndian.PutUint32(out, uint32(a.SampleRate))
	binary.LittleEndian.PutUint16(out[4:], uint16(a.Channels))
	copy(out[cachedHeaderSize:], a.PCM)
	return out
}

func decodeCached(data []byte) (*ttypes.Audio, error) {
	if len(data) <= cachedHeaderSize {
		return nil, errors.New("short cache entry")
	}
	a := &ttypes.Audio{
		SampleRate: int(binary.LittleEndian.Uint32(data)),
		Channels:   int(binary.LittleEndian.Uint16(data[4:])),
		PCM:        data[cachedHeaderSize:],
	}
	if a.SampleRate == 0 || a.Channels == 0 {
		return nil, errors.New("bad cache entry format")
	}
	return a, nil
}

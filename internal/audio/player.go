package audio

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

// ErrClosed is returned when playing on a closed player.
var ErrClosed = errors.New("player is closed")

// pollInterval is how often a playing stream is checked for completion.
const pollInterval = 20 * time.Millisecond

// PlayerConfig contains configuration for the audio player.
type PlayerConfig struct {
	SampleRate int           // 44100 or 48000 Hz
	BufferSize time.Duration // device buffer
}

// DefaultPlayerConfig returns the default player configuration.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: 44100,
		BufferSize: 100 * time.Millisecond,
	}
}

// Player plays mono PCM through oto. Play returns as soon as playback has
// started; IsPlaying turns false when the stream drains or Stop is called.
type Player struct {
	context    *oto.Context
	sampleRate int

	mu     sync.Mutex
	player *oto.Player
	data   []byte // kept alive while oto reads from it
	gen    uint64

	state  atomic.Int32
	volume atomic.Uint64 // math.Float64bits
}

var _ ttypes.AudioPlayer = (*Player)(nil)

// NewPlayer opens the audio device.
func NewPlayer(config PlayerConfig) (*Player, error) {
	if config.SampleRate != 44100 && config.SampleRate != 48000 {
		return nil, fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", config.SampleRate)
	}
	if config.BufferSize <= 0 {
		return nil, errors.New("buffer size must be positive")
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   config.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	p := &Player{
		context:    ctx,
		sampleRate: config.SampleRate,
	}
	p.state.Store(int32(StateStopped))
	p.volume.Store(math.Float64bits(1))
	return p, nil
}

// Play stops any current stream and starts audio.
func (p *Player) Play(audio *ttypes.Audio) error {
	if PlayerState(p.state.Load()) == StateClosed {
		return ErrClosed
	}
	if audio == nil || len(audio.PCM) == 0 {
		return errors.New("audio data is empty")
	}

	data, err := Convert(audio, p.sampleRate)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	player := p.context.NewPlayer(bytes.NewReader(data))
	player.SetVolume(p.Volume())

	p.gen++
	p.player = player
	p.data = data
	p.state.Store(int32(StatePlaying))
	player.Play()

	go p.watch(p.gen, player)
	return nil
}

// watch marks the player stopped once the stream drains.
func (p *Player) watch(gen uint64, player *oto.Player) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for range ticker.C {
		if player.IsPlaying() {
			continue
		}

		p.mu.Lock()
		if p.gen == gen {
			if err := player.Err(); err != nil {
				log.Warn("audio playback error", "err", err)
			}
			p.stopLocked()
		}
		p.mu.Unlock()
		return
	}
}

// Stop stops playback immediately.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	return nil
}

func (p *Player) stopLocked() {
	if p.player != nil {
		p.player.Pause()
		if err := p.player.Close(); err != nil {
			log.Debug("closing oto player", "err", err)
		}
		p.player = nil
		p.data = nil
	}
	if PlayerState(p.state.Load()) == StatePlaying {
		p.state.Store(int32(StateStopped))
	}
}

// IsPlaying returns whether audio is currently playing.
func (p *Player) IsPlaying() bool {
	return PlayerState(p.state.Load()) == StatePlaying
}

// State returns the current player state.
func (p *Player) State() PlayerState {
	return PlayerState(p.state.Load())
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (p *Player) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}
	p.volume.Store(math.Float64bits(volume))

	p.mu.Lock()
	if p.player != nil {
		p.player.SetVolume(volume)
	}
	p.mu.Unlock()
	return nil
}

// Volume returns the current volume.
func (p *Player) Volume() float64 {
	return math.Float64frombits(p.volume.Load())
}

// Close stops playback. oto contexts cannot be released, so the device
// stays open until the process exits.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.state.Store(int32(StateClosed))
	return nil
}

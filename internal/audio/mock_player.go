package audio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

// MockPlayer simulates playback without producing sound. Each Play "plays"
// for the audio's duration scaled by the delay factor.
type MockPlayer struct {
	mu       sync.Mutex
	state    PlayerState
	volume   float64
	factor   float64
	fixed    time.Duration
	played   []*ttypes.Audio
	stopCh   chan struct{}
	playErr  error
	onPlay   func(*ttypes.Audio)
	finished chan struct{}

	playCount atomic.Int64
	stopCount atomic.Int64
}

var _ ttypes.AudioPlayer = (*MockPlayer)(nil)

// NewMockPlayer creates a mock player that plays audio in real time.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{
		state:  StateStopped,
		volume: 1,
		factor: 1,
	}
}

// SetDelayFactor scales simulated playback time. 0 finishes immediately.
func (mp *MockPlayer) SetDelayFactor(factor float64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.factor = factor
	mp.fixed = 0
}

// SetPlayDuration makes every Play last d regardless of audio length.
func (mp *MockPlayer) SetPlayDuration(d time.Duration) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.fixed = d
}

// SetPlayError makes subsequent Play calls fail with err.
func (mp *MockPlayer) SetPlayError(err error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.playErr = err
}

// OnPlay registers a hook run synchronously at the start of every Play.
func (mp *MockPlayer) OnPlay(fn func(*ttypes.Audio)) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.onPlay = fn
}

// Play starts simulated playback.
func (mp *MockPlayer) Play(audio *ttypes.Audio) error {
	mp.mu.Lock()

	if mp.state == StateClosed {
		mp.mu.Unlock()
		return ErrClosed
	}
	if mp.playErr != nil {
		err := mp.playErr
		mp.mu.Unlock()
		return err
	}
	if audio == nil || len(audio.PCM) == 0 {
		mp.mu.Unlock()
		return errors.New("audio data is empty")
	}

	mp.stopLocked()

	d := mp.fixed
	if d == 0 {
		d = time.Duration(float64(audio.Duration()) * mp.factor)
	}

	stop := make(chan struct{})
	finished := make(chan struct{})
	mp.stopCh = stop
	mp.finished = finished
	mp.state = StatePlaying
	mp.played = append(mp.played, audio)
	mp.playCount.Add(1)
	hook := mp.onPlay
	mp.mu.Unlock()

	if hook != nil {
		hook(audio)
	}

	go func() {
		defer close(finished)

		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-stop:
			return
		}

		mp.mu.Lock()
		if mp.stopCh == stop {
			mp.state = StateStopped
			mp.stopCh = nil
		}
		mp.mu.Unlock()
	}()
	return nil
}

// Stop ends simulated playback immediately.
func (mp *MockPlayer) Stop() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.stopCount.Add(1)
	mp.stopLocked()
	return nil
}

func (mp *MockPlayer) stopLocked() {
	if mp.stopCh != nil {
		close(mp.stopCh)
		mp.stopCh = nil
	}
	if mp.state == StatePlaying {
		mp.state = StateStopped
	}
}

// IsPlaying returns whether audio is currently playing.
func (mp *MockPlayer) IsPlaying() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.state == StatePlaying
}

// State returns the current player state.
func (mp *MockPlayer) State() PlayerState {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.state
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (mp *MockPlayer) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.volume = volume
	return nil
}

// Volume returns the current volume.
func (mp *MockPlayer) Volume() float64 {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.volume
}

// Close stops playback and rejects further Play calls.
func (mp *MockPlayer) Close() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.stopLocked()
	mp.state = StateClosed
	return nil
}

// Played returns every audio passed to Play, in order.
func (mp *MockPlayer) Played() []*ttypes.Audio {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return append([]*ttypes.Audio(nil), mp.played...)
}

// PlayCount returns the number of successful Play calls.
func (mp *MockPlayer) PlayCount() int64 { return mp.playCount.Load() }

// StopCount returns the number of Stop calls.
func (mp *MockPlayer) StopCount() int64 { return mp.stopCount.Load() }

// WaitForCompletion waits until the current stream ends or timeout passes.
func (mp *MockPlayer) WaitForCompletion(timeout time.Duration) bool {
	mp.mu.Lock()
	finished := mp.finished
	mp.mu.Unlock()

	if finished == nil {
		return true
	}
	select {
	case <-finished:
		return !mp.IsPlaying()
	case <-time.After(timeout):
		return false
	}
}

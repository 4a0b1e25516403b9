package engines

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

// MockEngine produces silence whose length grows with the text. It backs
// the "mock" engine for dry runs and is used throughout the tests.
type MockEngine struct {
	// PerRune is the audio length produced per character (default 10ms).
	PerRune time.Duration

	// Delay simulates synthesis latency; it honors context cancellation.
	Delay time.Duration

	// Err, when set, is returned by Synthesize.
	Err error

	// ValidateErr, when set, is returned by Validate.
	ValidateErr error

	mu    sync.Mutex
	calls []ttypes.Utterance
}

var _ ttypes.Synthesizer = (*MockEngine)(nil)

const mockSampleRate = 22050

// NewMockEngine creates a mock engine.
func NewMockEngine() *MockEngine {
	return &MockEngine{PerRune: 10 * time.Millisecond}
}

// Synthesize records the utterance and returns silence.
func (m *MockEngine) Synthesize(ctx context.Context, u ttypes.Utterance) (*ttypes.Audio, error) {
	m.mu.Lock()
	m.calls = append(m.calls, u)
	delay, err := m.Delay, m.Err
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	d := time.Duration(utf8.RuneCountInString(u.Text)) * m.PerRune
	frames := int(d.Seconds() * mockSampleRate)
	if frames == 0 {
		frames = 1
	}
	return &ttypes.Audio{
		PCM:        make([]byte, frames*2),
		SampleRate: mockSampleRate,
		Channels:   1,
	}, nil
}

// Calls returns every utterance passed to Synthesize, in order.
func (m *MockEngine) Calls() []ttypes.Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ttypes.Utterance(nil), m.calls...)
}

// Info returns engine capabilities.
func (m *MockEngine) Info() ttypes.EngineInfo {
	return ttypes.EngineInfo{
		Name:        string(ttypes.EngineMock),
		SampleRate:  mockSampleRate,
		Channels:    1,
		MaxTextSize: 5000,
	}
}

// Validate returns ValidateErr.
func (m *MockEngine) Validate() error { return m.ValidateErr }

// Close is a no-op.
func (m *MockEngine) Close() error { return nil }

package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgnsrekt/vokabel/internal/playback"
)

// Events carries playback events from controller goroutines to the Bubble
// Tea loop. Push never blocks, so the controller cannot stall on a busy UI.
type Events struct {
	mu      sync.Mutex
	pending []playback.Event
	closed  bool

	signal chan struct{}
	done   chan struct{}
}

// NewEvents creates an empty event queue.
func NewEvents() *Events {
	return &Events{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push queues ev. It is meant to be used as playback.Config.OnChange.
func (e *Events) Push(ev playback.Event) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.pending = append(e.pending, ev)
	e.mu.Unlock()

	select {
	case e.signal <- struct{}{}:
	default:
	}
}

// Close releases any waiting listener.
func (e *Events) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.done)
}

func (e *Events) drain() []playback.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.pending
	e.pending = nil
	return out
}

// playbackMsg is a batch of events in the order they happened.
type playbackMsg []playback.Event

// waitForEvents blocks until events are queued and delivers all of them.
func waitForEvents(e *Events) tea.Cmd {
	if e == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case <-e.signal:
				if evs := e.drain(); len(evs) > 0 {
					return playbackMsg(evs)
				}
			case <-e.done:
				return nil
			}
		}
	}
}

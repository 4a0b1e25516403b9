// Package playback reads a vocabulary list aloud entry by entry: the
// normalized word, a pause, the example sentence, another pause, then the
// next entry. Progress is saved as it goes so a stopped session can be
// continued later.
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/vokabel/internal/tts"
	"github.com/dgnsrekt/vokabel/internal/ttypes"
	"github.com/dgnsrekt/vokabel/internal/vocab"
)

// DefaultPause is the silence after each utterance of a sequence.
const DefaultPause = 500 * time.Millisecond

// Speaker speaks one utterance, blocking until it finishes or ctx ends.
type Speaker interface {
	Speak(ctx context.Context, text string, locale ttypes.Locale) error
}

// Progress persists the resume index.
type Progress interface {
	SetLength(n int)
	Save(index int) error
	Load() (int, bool)
	Clear() error
}

// Config configures a Controller.
type Config struct {
	// Pause after each utterance (default DefaultPause).
	Pause time.Duration

	// OnChange receives every transition in order. It is called from
	// controller goroutines and must not call back into the Controller.
	OnChange func(Event)
}

// Controller owns the playback state. Every sequence runs in its own
// goroutine tagged with a generation; starting, stopping or resetting bumps
// the generation and cancels the running context, so a stale sequence
// notices on its next step and exits without touching state.
type Controller struct {
	speaker  Speaker
	progress Progress
	pause    time.Duration
	onChange func(Event)

	mu     sync.Mutex
	list   vocab.List
	state  State
	index  int
	gen    uint64
	cancel context.CancelFunc
	closed bool

	// speakMu keeps a single utterance in flight while a canceled one
	// winds down.
	speakMu sync.Mutex

	// emitMu is taken before mu is released so events leave in the order
	// the transitions happened.
	emitMu sync.Mutex

	wg sync.WaitGroup
}

// New creates an idle controller with an empty list.
func New(speaker Speaker, progress Progress, config Config) *Controller {
	if config.Pause <= 0 {
		config.Pause = DefaultPause
	}
	return &Controller{
		speaker:  speaker,
		progress: progress,
		pause:    config.Pause,
		onChange: config.OnChange,
		state:    Idle,
		index:    -1,
	}
}

// SetList replaces the vocabulary list. Any running speech is canceled and
// the controller returns to Idle; saved progress survives if it is still in
// bounds of the new list.
func (c *Controller) SetList(list vocab.List) {
	c.mu.Lock()
	c.cancelLocked()
	c.list = list
	c.progress.SetLength(list.Len())
	c.state = Idle
	c.index = -1
	c.unlockAndEmit(nil)
}

// List returns the current list.
func (c *Controller) List() vocab.List {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() Status {
	_, resumable := c.progress.Load()
	return Status{State: c.state, Index: c.index, Resumable: resumable}
}

// StartFrom cancels whatever is speaking and reads from entry i onward. An
// out-of-range i starts from 0.
func (c *Controller) StartFrom(i int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.cancelLocked()

	if i < 0 || i >= c.list.Len() {
		i = 0
	}

	// Speaking(i) and its saved index are in place before StartFrom returns,
	// so an immediate Stop keeps i.
	entry, ok := c.enterLocked(i)
	if !ok {
		c.unlockAndEmit(nil)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	gen := c.gen

	log.Debug("start sequence", "index", i, "gen", gen)

	c.wg.Add(1)
	go c.run(ctx, gen, i, entry)
	c.unlockAndEmit(nil)
}

// Resume continues from the saved index, or from the beginning.
func (c *Controller) Resume() {
	i, ok := c.progress.Load()
	if !ok {
		i = 0
	}
	c.StartFrom(i)
}

// Stop cancels speech. A running sequence saves its index and the
// controller becomes Stopped.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.cancelLocked()
	c.stopLocked()
	c.unlockAndEmit(nil)
}

func (c *Controller) stopLocked() {
	if c.state != Speaking {
		return
	}
	if err := c.progress.Save(c.index); err != nil {
		log.Warn("failed to save progress", "index", c.index, "err", err)
	}
	c.state = Stopped
	c.index = -1
}

// Reset cancels speech, forgets saved progress and returns to Idle.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.cancelLocked()
	if err := c.progress.Clear(); err != nil {
		log.Warn("failed to clear progress", "err", err)
	}
	c.state = Idle
	c.index = -1
	c.unlockAndEmit(nil)
}

// SpeakText speaks a single normalized utterance. A running sequence is
// stopped first, saving its index, so the two never interleave.
func (c *Controller) SpeakText(text string, locale ttypes.Locale) {
	text = vocab.Normalize(text)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.cancelLocked()
	c.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	gen := c.gen

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.say(ctx, gen, text, locale)
	}()
	c.unlockAndEmit(nil)
}

// Close cancels speech and waits for controller goroutines to exit.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.cancelLocked()
	c.mu.Unlock()

	c.wg.Wait()
}

// cancelLocked invalidates the running sequence or utterance.
func (c *Controller) cancelLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// run reads entry i, which StartFrom already entered, then the following
// entries until the list ends or the generation changes.
func (c *Controller) run(ctx context.Context, gen uint64, i int, entry vocab.Entry) {
	defer c.wg.Done()

	for {
		if !c.say(ctx, gen, vocab.Normalize(entry.Word), ttypes.LocaleGerman) || !c.sleep(ctx) {
			return
		}
		if !c.say(ctx, gen, entry.Example, ttypes.LocaleGerman) || !c.sleep(ctx) {
			return
		}
		i++

		var ok bool
		if entry, ok = c.enter(gen, i); !ok {
			return
		}
	}
}

// enter moves to entry i if gen is still live.
func (c *Controller) enter(gen uint64, i int) (vocab.Entry, bool) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return vocab.Entry{}, false
	}
	entry, ok := c.enterLocked(i)
	c.unlockAndEmit(nil)
	return entry, ok
}

// enterLocked sets Speaking(i) and saves i. Past the end of the list the
// sequence finishes instead: Idle, progress cleared. mu must be held.
func (c *Controller) enterLocked(i int) (vocab.Entry, bool) {
	if i >= c.list.Len() {
		log.Debug("sequence finished", "gen", c.gen)
		if err := c.progress.Clear(); err != nil {
			log.Warn("failed to clear progress", "err", err)
		}
		c.state = Idle
		c.index = -1
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
		return vocab.Entry{}, false
	}

	c.state = Speaking
	c.index = i
	if err := c.progress.Save(i); err != nil {
		log.Warn("failed to save progress", "index", i, "err", err)
	}
	entry, _ := c.list.At(i)
	return entry, true
}

// say speaks one utterance and reports whether gen is still live. Speech
// failures are reported as events; an unrecoverable one stops the sequence.
func (c *Controller) say(ctx context.Context, gen uint64, text string, locale ttypes.Locale) bool {
	c.speakMu.Lock()
	if ctx.Err() != nil {
		c.speakMu.Unlock()
		return false
	}
	err := c.speaker.Speak(ctx, text, locale)
	c.speakMu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	if err == nil {
		return true
	}

	log.Error("speech failed", "locale", locale, "err", err)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	if tts.IsRecoverableError(err) {
		c.unlockAndEmit(err)
		return true
	}
	c.cancelLocked()
	c.stopLocked()
	c.unlockAndEmit(err)
	return false
}

// sleep waits for the pause unless ctx ends first.
func (c *Controller) sleep(ctx context.Context) bool {
	timer := time.NewTimer(c.pause)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// unlockAndEmit releases mu and delivers the current status in order.
// mu must be held.
func (c *Controller) unlockAndEmit(err error) {
	ev := Event{Status: c.statusLocked(), Err: err}
	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()

	if c.onChange != nil {
		c.onChange(ev)
	}
}

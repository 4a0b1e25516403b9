package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/vokabel/internal/ttypes"
	"github.com/dgnsrekt/vokabel/internal/vocab"
)

// DefaultLookahead is how many entries past the current one are warmed.
const DefaultLookahead = 2

// WarmFunc synthesizes a job, typically through the audio cache.
type WarmFunc func(ctx context.Context, job Job) error

// Prefetcher drains a Queue with a single worker.
type Prefetcher struct {
	queue     *Queue
	warm      WarmFunc
	lookahead int

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewPrefetcher starts a worker that calls warm for every queued job.
func NewPrefetcher(warm WarmFunc, lookahead int) *Prefetcher {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Prefetcher{
		queue:     New(lookahead * 2 * 2),
		warm:      warm,
		lookahead: lookahead,
		cancel:    cancel,
	}
	p.wg.Add(1)
	go p.work(ctx)
	return p
}

// Ahead replaces pending work with the entries following index i. The word
// is queued normalized, the way a sequence speaks it.
func (p *Prefetcher) Ahead(list vocab.List, i int) {
	p.queue.Clear()
	for n := i + 1; n <= i+p.lookahead; n++ {
		entry, ok := list.At(n)
		if !ok {
			return
		}
		p.enqueue(Job{Text: vocab.Normalize(entry.Word), Locale: ttypes.LocaleGerman}, false)
		p.enqueue(Job{Text: entry.Example, Locale: ttypes.LocaleGerman}, false)
	}
}

// Warm queues a single utterance ahead of the regular lookahead.
func (p *Prefetcher) Warm(text string, locale ttypes.Locale) {
	p.enqueue(Job{Text: text, Locale: locale}, true)
}

// Queue exposes the underlying queue.
func (p *Prefetcher) Queue() *Queue { return p.queue }

func (p *Prefetcher) enqueue(job Job, priority bool) {
	if job.Text == "" {
		return
	}
	if err := p.queue.Enqueue(job, priority); err != nil && !errors.Is(err, ErrQueueClosed) {
		log.Debug("prefetch dropped", "text", job.Text, "err", err)
	}
}

func (p *Prefetcher) work(ctx context.Context) {
	defer p.wg.Done()
	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			return
		}
		if err := p.warm(ctx, job); err != nil && ctx.Err() == nil {
			log.Debug("prefetch failed", "text", job.Text, "locale", job.Locale, "err", err)
		}
	}
}

// Close stops the worker and waits for it to exit.
func (p *Prefetcher) Close() error {
	p.once.Do(func() {
		p.cancel()
		_ = p.queue.Close()
		p.wg.Wait()
	})
	return nil
}

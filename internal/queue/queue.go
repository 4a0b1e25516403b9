package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

var (
	// ErrQueueFull is returned when the queue is at capacity.
	ErrQueueFull = errors.New("queue is full")

	// ErrQueueClosed is returned when operations are attempted on a closed queue.
	ErrQueueClosed = errors.New("queue is closed")
)

// Job is one utterance to synthesize.
type Job struct {
	Text   string
	Locale ttypes.Locale
}

// Stats tracks queue activity.
type Stats struct {
	TotalEnqueued     int64
	TotalDequeued     int64
	TotalDropped      int64
	HighPriorityCount int64
	CurrentSize       int
	PeakSize          int
	LastEnqueue       time.Time
	LastDequeue       time.Time
}

// Queue is a bounded job queue. Priority jobs are handed out before regular
// ones; both are FIFO. A job already waiting is not queued twice.
type Queue struct {
	mu       sync.Mutex
	priority []Job
	regular  []Job
	queued   map[Job]struct{}
	maxSize  int
	closed   bool
	stats    Stats

	// ready has room for one wakeup; Dequeue rechecks the slices after
	// every receive.
	ready chan struct{}
	done  chan struct{}
}

// New creates a queue holding at most maxSize jobs.
func New(maxSize int) *Queue {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Queue{
		queued:  make(map[Job]struct{}),
		maxSize: maxSize,
		ready:   make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Enqueue adds a job without blocking. A full queue drops the job and
// returns ErrQueueFull.
func (q *Queue) Enqueue(job Job, priority bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if _, ok := q.queued[job]; ok {
		return nil
	}
	if q.sizeLocked() >= q.maxSize {
		q.stats.TotalDropped++
		return ErrQueueFull
	}

	if priority {
		q.priority = append(q.priority, job)
		q.stats.HighPriorityCount++
	} else {
		q.regular = append(q.regular, job)
	}
	q.queued[job] = struct{}{}

	q.stats.TotalEnqueued++
	q.stats.LastEnqueue = time.Now()
	if n := q.sizeLocked(); n > q.stats.PeakSize {
		q.stats.PeakSize = n
	}

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue blocks until a job is available, ctx ends, or the queue closes.
func (q *Queue) Dequeue(ctx context.Context) (Job, error) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return Job{}, ErrQueueClosed
		}
		if job, ok := q.popLocked(); ok {
			q.mu.Unlock()
			return job, nil
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-q.done:
		case <-ctx.Done():
			return Job{}, ctx.Err()
		}
	}
}

func (q *Queue) popLocked() (Job, bool) {
	var job Job
	switch {
	case len(q.priority) > 0:
		job, q.priority = q.priority[0], q.priority[1:]
	case len(q.regular) > 0:
		job, q.regular = q.regular[0], q.regular[1:]
	default:
		return Job{}, false
	}
	delete(q.queued, job)
	q.stats.TotalDequeued++
	q.stats.LastDequeue = time.Now()
	return job, true
}

// Size returns the number of waiting jobs.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sizeLocked()
}

func (q *Queue) sizeLocked() int {
	return len(q.priority) + len(q.regular)
}

// Clear drops every waiting job.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.priority = nil
	q.regular = nil
	q.queued = make(map[Job]struct{})
}

// Stats returns a snapshot of the queue statistics.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := q.stats
	stats.CurrentSize = q.sizeLocked()
	return stats
}

// Close wakes every waiting Dequeue. Further calls fail with ErrQueueClosed.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.done)
	return nil
}

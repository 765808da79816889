package queue

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrQueueEmpty is returned by Peek and Pop on an empty queue.
	ErrQueueEmpty = errors.New("queue is empty")

	// ErrQueueClosed is returned when operations are attempted on a closed queue.
	ErrQueueClosed = errors.New("queue is closed")
)

// DefaultMaxSize bounds a queue created with a non-positive size.
const DefaultMaxSize = 16

// Stats tracks queue activity.
type Stats struct {
	TotalEnqueued   int64
	TotalDequeued   int64
	TotalDropped    int64
	CurrentSize     int
	PeakSize        int
	LastEnqueue     time.Time
	LastDequeue     time.Time
	AverageWaitTime time.Duration
}

type entry[T any] struct {
	value    T
	enqueued time.Time
}

// Queue is a thread-safe bounded FIFO.
type Queue[T any] struct {
	items   []entry[T]
	maxSize int
	closed  bool

	stats     Stats
	totalWait time.Duration

	mu sync.Mutex
}

// New creates a queue holding at most maxSize items.
func New[T any](maxSize int) *Queue[T] {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Queue[T]{
		items:   make([]entry[T], 0, maxSize),
		maxSize: maxSize,
	}
}

// Push appends v. When the queue is full the oldest item is dropped and
// returned with dropped set.
func (q *Queue[T]) Push(v T) (old T, dropped bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return old, false, ErrQueueClosed
	}

	if len(q.items) >= q.maxSize {
		old = q.items[0].value
		q.items = q.items[1:]
		dropped = true
		q.stats.TotalDropped++
	}

	now := time.Now()
	q.items = append(q.items, entry[T]{value: v, enqueued: now})
	q.stats.TotalEnqueued++
	q.stats.LastEnqueue = now
	q.stats.CurrentSize = len(q.items)
	q.stats.PeakSize = max(q.stats.PeakSize, len(q.items))
	return old, dropped, nil
}

// Peek returns the oldest item without removing it.
func (q *Queue[T]) Peek() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, ErrQueueEmpty
	}
	return q.items[0].value, nil
}

// Pop removes and returns the oldest item.
func (q *Queue[T]) Pop() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, ErrQueueEmpty
	}
	e := q.items[0]
	q.items[0] = entry[T]{}
	q.items = q.items[1:]
	q.dequeued([]entry[T]{e})
	return e.value, nil
}

// Drain removes and returns every item, oldest first.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	drained := q.items
	q.items = make([]entry[T], 0, q.maxSize)
	q.dequeued(drained)

	out := make([]T, len(drained))
	for i, e := range drained {
		out[i] = e.value
	}
	return out
}

// dequeued updates stats for removed entries. Callers hold q.mu.
func (q *Queue[T]) dequeued(es []entry[T]) {
	now := time.Now()
	for _, e := range es {
		q.totalWait += now.Sub(e.enqueued)
	}
	q.stats.TotalDequeued += int64(len(es))
	q.stats.LastDequeue = now
	q.stats.CurrentSize = len(q.items)
	q.stats.AverageWaitTime = q.totalWait / time.Duration(q.stats.TotalDequeued)
}

// Clear drops every item without counting them as dequeued.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stats.TotalDropped += int64(len(q.items))
	q.items = q.items[:0]
	q.stats.CurrentSize = 0
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Cap returns the maximum number of items.
func (q *Queue[T]) Cap() int {
	return q.maxSize
}

// Stats returns a snapshot of the queue statistics.
func (q *Queue[T]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}

// Close rejects further pushes. Queued items can still be drained.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

// IsClosed reports whether Close was called.
func (q *Queue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

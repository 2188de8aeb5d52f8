package bus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrQueueFull   = errors.New("event queue full")
	ErrQueueClosed = errors.New("event queue closed")
)

// Queue is a bounded event queue with many producers and one consumer.
// The channel is never closed, so a producer racing Close gets
// ErrQueueClosed or a silently parked event, never a panic.
//
// Push spills into an unbounded backlog when the channel is full. While the
// backlog holds anything TryPublish reports ErrQueueFull, so pushed events
// keep their order and lossy producers cannot starve them.
type Queue struct {
	ch     chan Event
	closed atomic.Bool

	mu      sync.Mutex
	backlog []Event
	spilled atomic.Int64
}

func NewQueue(capacity int) *Queue {
	return &Queue{ch: make(chan Event, max(capacity, 1))}
}

// TryPublish never blocks.
func (q *Queue) TryPublish(e Event) error {
	if q.closed.Load() {
		return ErrQueueClosed
	}
	if q.spilled.Load() != 0 || !q.offer(e) {
		return ErrQueueFull
	}
	return nil
}

// Push never blocks and never drops an event of an open queue.
func (q *Queue) Push(e Event) error {
	if q.closed.Load() {
		return ErrQueueClosed
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.backlog) == 0 && q.offer(e) {
		return nil
	}
	q.backlog = append(q.backlog, e)
	q.spilled.Store(int64(len(q.backlog)))
	return nil
}

// Publish waits for room until ctx is done.
func (q *Queue) Publish(ctx context.Context, e Event) error {
	if q.closed.Load() {
		return ErrQueueClosed
	}
	select {
	case q.ch <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPop is for the consumer only. The backlog is read once the channel is
// empty.
func (q *Queue) TryPop() (Event, bool) {
	select {
	case e := <-q.ch:
		return e, true
	default:
	}
	if q.spilled.Load() == 0 {
		return Event{}, false
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.backlog) == 0 {
		return Event{}, false
	}
	e := q.backlog[0]
	q.backlog[0] = Event{}
	q.backlog = q.backlog[1:]
	if len(q.backlog) == 0 {
		q.backlog = nil
	}
	q.spilled.Store(int64(len(q.backlog)))
	return e, true
}

// Retain empties the queue, puts back the events keep accepts in their
// original order and returns how many were dropped. Kept events that no
// longer fit the channel go to the backlog. Only the consumer may call it.
func (q *Queue) Retain(keep func(Event) bool) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.ch)
	all := make([]Event, 0, n+len(q.backlog))
	for range n {
		select {
		case e := <-q.ch:
			all = append(all, e)
		default:
		}
	}
	all = append(all, q.backlog...)

	kept := all[:0]
	for _, e := range all {
		if keep(e) {
			kept = append(kept, e)
		}
	}
	dropped := len(all) - len(kept)

	q.backlog = nil
	for i, e := range kept {
		if !q.offer(e) {
			q.backlog = append([]Event(nil), kept[i:]...)
			break
		}
	}
	q.spilled.Store(int64(len(q.backlog)))
	return dropped
}

func (q *Queue) offer(e Event) bool {
	select {
	case q.ch <- e:
		return true
	default:
		return false
	}
}

func (q *Queue) Len() int {
	return len(q.ch) + int(q.spilled.Load())
}

// Close rejects later publishes. Queued events stay poppable.
func (q *Queue) Close() {
	q.closed.Store(true)
}

func (q *Queue) Closed() bool {
	return q.closed.Load()
}

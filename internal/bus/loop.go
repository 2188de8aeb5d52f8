package bus

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the target duration of one loop cycle.
const DefaultInterval = 100 * time.Microsecond

// Handler consumes one event. Handlers must not block.
type Handler func(Event)

// Observer is notified after every dispatched event.
type Observer interface {
	ObserveDispatch(kind Kind, d time.Duration)
}

// Loop dispatches queued events to the handlers registered for their kind,
// in registration order, on a single goroutine.
type Loop struct {
	queue    *Queue
	handlers [KindCount][]Handler
	observer Observer
	guard    sync.Locker
}

func NewLoop(queue *Queue) *Loop {
	return &Loop{queue: queue}
}

func (l *Loop) Queue() *Queue {
	return l.queue
}

// SetObserver must be called before Run.
func (l *Loop) SetObserver(o Observer) {
	l.observer = o
}

// SetGuard installs a lock held for the whole dispatch of every event, so
// owners can exclude dispatch while they swap state. It must be called before Run.
func (l *Loop) SetGuard(guard sync.Locker) {
	l.guard = guard
}

// Register appends a handler for the kind. It must be called before Run.
func (l *Loop) Register(kind Kind, h Handler) {
	if !kind.IsAvailable() || h == nil {
		return
	}
	l.handlers[kind] = append(l.handlers[kind], h)
}

// Step dispatches at most one event and reports whether one was handled.
func (l *Loop) Step() bool {
	if l.guard != nil {
		l.guard.Lock()
		defer l.guard.Unlock()
	}

	e, ok := l.queue.TryPop()
	if !ok {
		return false
	}
	if !e.Kind.IsAvailable() {
		return true
	}

	begin := time.Now()
	if e.Kind == KindCall && e.Call != nil {
		e.Call()
	}
	for _, h := range l.handlers[e.Kind] {
		h(e)
	}
	if l.observer != nil {
		l.observer.ObserveDispatch(e.Kind, time.Since(begin))
	}
	return true
}

// Run steps the loop until ctx is done, pacing every cycle to interval.
// Events are only dispatched while gate returns true; a nil gate always dispatches.
func (l *Loop) Run(ctx context.Context, interval time.Duration, gate func() bool) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		begin := time.Now()
		if gate == nil || gate() {
			l.Step()
		}

		wait := interval - time.Since(begin)
		if wait <= 0 {
			select {
			case <-ctx.Done():
				return
			default:
				continue
			}
		}

		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

package store

import (
	"sync"
	"sync/atomic"

	"github.com/yanun0323/logs"
)

const DefaultAsyncCapacity = 4096

// Async moves writes to a worker goroutine. A full buffer drops the row.
type Async struct {
	next    Sink
	ch      chan func(Sink)
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
	closed  atomic.Bool
	dropped atomic.Uint64
}

// NewAsync starts the worker. capacity <= 0 uses DefaultAsyncCapacity.
func NewAsync(next Sink, capacity int) *Async {
	if capacity <= 0 {
		capacity = DefaultAsyncCapacity
	}
	a := &Async{
		next: next,
		ch:   make(chan func(Sink), capacity),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for {
		select {
		case w := <-a.ch:
			w(a.next)
		case <-a.quit:
			for {
				select {
				case w := <-a.ch:
					w(a.next)
				default:
					return
				}
			}
		}
	}
}

func (a *Async) enqueue(w func(Sink)) {
	if a.closed.Load() {
		a.dropped.Add(1)
		return
	}
	select {
	case a.ch <- w:
	default:
		if a.dropped.Add(1)%1024 == 1 {
			logs.Warnf("store async buffer full, dropped: %d", a.dropped.Load())
		}
	}
}

// Dropped reports rows lost to a full buffer or a closed sink.
func (a *Async) Dropped() uint64 {
	return a.dropped.Load()
}

func (a *Async) WriteLog(row LogRow) {
	a.enqueue(func(s Sink) { s.WriteLog(row) })
}

func (a *Async) WriteOrder(row OrderRow) {
	a.enqueue(func(s Sink) { s.WriteOrder(row) })
}

func (a *Async) WriteTrade(row TradeRow) {
	a.enqueue(func(s Sink) { s.WriteTrade(row) })
}

func (a *Async) WritePosition(row PositionRow) {
	a.enqueue(func(s Sink) { s.WritePosition(row) })
}

func (a *Async) WriteRiskIndicators(row RiskRow) {
	a.enqueue(func(s Sink) { s.WriteRiskIndicators(row) })
}

// Close drains the buffer and closes the wrapped sink.
func (a *Async) Close() error {
	var err error
	a.once.Do(func() {
		a.closed.Store(true)
		close(a.quit)
		<-a.done
		err = a.next.Close()
	})
	return err
}

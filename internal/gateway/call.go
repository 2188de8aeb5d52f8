package gateway

import (
	"context"
	"sync"
	"time"

	"rookie/pkg/exception"
)

// DefaultTimeout bounds every blocking adapter call.
const DefaultTimeout = 30 * time.Second

// Status is the state of a Call.
type Status uint8

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusFailure
)

// Call turns an asynchronous venue request into a blocking one.
//
// The requesting goroutine calls Begin, sends the venue request and then Wait.
// The venue callback goroutine reports the result with Resolve, Append (for
// paginated answers) or Fail. Results reported while no call is pending are dropped.
type Call[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	status Status
	result T
	err    error
	merge  func(acc, page T) T
}

// NewCall creates a call. merge accumulates pages for Append and may be nil
// when the answer is never paginated.
func NewCall[T any](merge func(acc, page T) T) *Call[T] {
	c := &Call[T]{merge: merge}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Begin marks the call pending. Only one request may be in flight.
func (c *Call[T]) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusPending {
		return exception.ErrRPCBusy
	}
	var zero T
	c.status = StatusPending
	c.result = zero
	c.err = nil
	return nil
}

// Pending reports whether a request is waiting for its answer.
func (c *Call[T]) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == StatusPending
}

// Resolve completes the call with v.
func (c *Call[T]) Resolve(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusPending {
		return
	}
	c.result = v
	c.status = StatusSuccess
	c.cond.Broadcast()
}

// Append accumulates one page and completes the call on the last page.
func (c *Call[T]) Append(page T, last bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusPending {
		return
	}
	if c.merge != nil {
		c.result = c.merge(c.result, page)
	} else {
		c.result = page
	}
	if last {
		c.status = StatusSuccess
		c.cond.Broadcast()
	}
}

// Fail completes the call with err.
func (c *Call[T]) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusPending {
		return
	}
	if err == nil {
		err = exception.ErrRPCFailed
	}
	c.err = err
	c.status = StatusFailure
	c.cond.Broadcast()
}

// Wait blocks until the call completes, the timeout expires or ctx is done.
// A timed out call is failed so a late answer is dropped.
func (c *Call[T]) Wait(ctx context.Context, timeout time.Duration) (T, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)
	wake := func() {
		c.mu.Lock()
		c.cond.Broadcast()
		c.mu.Unlock()
	}
	timer := time.AfterFunc(timeout, wake)
	defer timer.Stop()
	stop := context.AfterFunc(ctx, wake)
	defer stop()

	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.status == StatusPending {
		if err := ctx.Err(); err != nil {
			c.status = StatusFailure
			c.err = err
			return zero, err
		}
		if !time.Now().Before(deadline) {
			c.status = StatusFailure
			c.err = exception.ErrRPCTimeout
			return zero, exception.ErrRPCTimeout
		}
		c.cond.Wait()
	}

	if c.status != StatusSuccess {
		return zero, c.err
	}
	result := c.result
	c.result = zero
	return result, nil
}

// MergeSlice concatenates pages.
func MergeSlice[S ~[]E, E any](acc, page S) S {
	return append(acc, page...)
}

// MergeMap copies page entries into acc.
func MergeMap[M ~map[K]V, K comparable, V any](acc, page M) M {
	if acc == nil {
		acc = make(M, len(page))
	}
	for k, v := range page {
		acc[k] = v
	}
	return acc
}

// Package throttle provides a bounded-concurrency task executor with a
// bounded FIFO pending queue. One instance owns the rate budget of one
// upstream service; every call to that service goes through it.
package throttle

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrQueueFull is returned immediately when the waiting queue is at
	// capacity. Do never blocks the caller on a full queue.
	ErrQueueFull = errors.New("throttle: queue full")
	// ErrAborted is returned to waiters cleared by Abort.
	ErrAborted = errors.New("throttle: aborted")
)

// Stats is a point-in-time snapshot of throttle activity.
type Stats struct {
	Executed int64 `json:"executed"`
	Failures int64 `json:"failures"`
	Queued   int   `json:"queued"`
	Active   int   `json:"active"`
}

type waiter struct {
	ready chan error // nil grants a slot; non-nil rejects the waiter
}

// Throttle runs tasks with at most `concurrency` in flight and at most
// `maxQueue` waiting. Waiting tasks start in submission order.
type Throttle struct {
	mu          sync.Mutex
	concurrency int
	maxQueue    int
	active      int
	queue       []*waiter
	executed    int64
	failures    int64
}

// New creates a throttle. Non-positive parameters fall back to 1.
func New(concurrency, maxQueue int) *Throttle {
	if concurrency < 1 {
		concurrency = 1
	}
	if maxQueue < 1 {
		maxQueue = 1
	}
	return &Throttle{concurrency: concurrency, maxQueue: maxQueue}
}

// Do executes fn when a slot is available, queueing FIFO behind earlier
// waiters. It returns fn's own error, ErrQueueFull when the pending queue is
// at capacity, or ctx.Err() if the caller gives up while waiting. A task
// failure affects only its own caller.
func (t *Throttle) Do(ctx context.Context, fn func(context.Context) error) error {
	t.mu.Lock()
	if t.active < t.concurrency {
		t.active++
		t.mu.Unlock()
		return t.run(ctx, fn)
	}
	if len(t.queue) >= t.maxQueue {
		t.mu.Unlock()
		return ErrQueueFull
	}
	w := &waiter{ready: make(chan error, 1)}
	t.queue = append(t.queue, w)
	t.mu.Unlock()

	select {
	case err := <-w.ready:
		if err != nil {
			return err
		}
		return t.run(ctx, fn)
	case <-ctx.Done():
		if t.dequeue(w) {
			return ctx.Err()
		}
		// Lost the race: the waiter was already granted a slot or rejected.
		if err := <-w.ready; err != nil {
			return err
		}
		t.release()
		return ctx.Err()
	}
}

// run executes fn while holding a slot, then hands the slot to the next
// waiter or releases it.
func (t *Throttle) run(ctx context.Context, fn func(context.Context) error) error {
	err := fn(ctx)

	t.mu.Lock()
	t.executed++
	if err != nil {
		t.failures++
	}
	t.handoffLocked()
	t.mu.Unlock()
	return err
}

// release frees a slot obtained without running a task.
func (t *Throttle) release() {
	t.mu.Lock()
	t.handoffLocked()
	t.mu.Unlock()
}

// handoffLocked passes the current slot to the oldest waiter, or decrements
// the active count when nobody is waiting. Caller holds t.mu.
func (t *Throttle) handoffLocked() {
	if len(t.queue) > 0 {
		next := t.queue[0]
		t.queue = t.queue[1:]
		next.ready <- nil
		return
	}
	t.active--
}

// dequeue removes w from the waiting queue. Reports false when w already
// left the queue (granted or rejected).
func (t *Throttle) dequeue(w *waiter) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, q := range t.queue {
		if q == w {
			t.queue = append(t.queue[:i], t.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Abort rejects and clears every waiting task with ErrAborted. In-flight
// tasks are untouched.
func (t *Throttle) Abort() {
	t.mu.Lock()
	queue := t.queue
	t.queue = nil
	t.mu.Unlock()
	for _, w := range queue {
		w.ready <- ErrAborted
	}
}

// Stats reports executed/failure/queued/active counts.
func (t *Throttle) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		Executed: t.executed,
		Failures: t.failures,
		Queued:   len(t.queue),
		Active:   t.active,
	}
}

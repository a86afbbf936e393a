// Package debounce delays a function call until a quiet period has elapsed.
// Only the last call in a burst runs, with that call's argument.
package debounce

import (
	"sync"
	"time"
)

type stopper interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) stopper

func realAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// Debouncer runs fn at most once per burst of calls, delay after the last one.
// It is safe for concurrent use.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)
	after afterFunc

	mu      sync.Mutex
	timer   stopper
	seq     uint64
	pending bool
	arg     T
}

// New returns a Debouncer that invokes fn delay after the most recent Call.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn, after: realAfterFunc}
}

// Call schedules fn(arg), replacing any call still waiting.
func (d *Debouncer[T]) Call(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.arg = arg
	d.pending = true
	d.timer = d.after(d.delay, func() { d.fire(seq) })
}

// Cancel discards the waiting call, if any.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
	var zero T
	d.arg = zero
}

// Pending reports whether a call is waiting to run.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	// A timer that lost the race with Call or Cancel must not run.
	if seq != d.seq || !d.pending {
		d.mu.Unlock()
		return
	}
	arg := d.arg
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.fn(arg)
}

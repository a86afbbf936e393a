package debounce

import (
	"sync"
	"testing"
	"time"
)

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeClock fires timers when Advance moves past their deadline.
type fakeClock struct {
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) afterFunc(d time.Duration, f func()) stopper {
	t := &fakeTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now += d
	for _, t := range c.timers {
		if !t.stopped && t.at <= c.now {
			t.stopped = true
			t.f()
		}
	}
}

type call struct {
	at  time.Duration
	arg string
}

func newFake(delay time.Duration) (*Debouncer[string], *fakeClock, *[]call) {
	clock := &fakeClock{}
	var calls []call
	d := New(delay, func(arg string) {
		calls = append(calls, call{at: clock.now, arg: arg})
	})
	d.after = clock.afterFunc
	return d, clock, &calls
}

func TestDebouncer_LastCallWins(t *testing.T) {
	d, clock, calls := newFake(500 * time.Millisecond)

	d.Call("p")
	clock.Advance(100 * time.Millisecond)
	d.Call("pi")
	clock.Advance(100 * time.Millisecond)
	d.Call("pik")

	clock.Advance(499 * time.Millisecond)
	if len(*calls) != 0 {
		t.Fatalf("fn ran early at %v", (*calls)[0].at)
	}
	if !d.Pending() {
		t.Fatalf("Pending() = false before deadline")
	}

	clock.Advance(time.Millisecond)
	if len(*calls) != 1 {
		t.Fatalf("fn ran %d times, want 1", len(*calls))
	}
	got := (*calls)[0]
	if got.at != 700*time.Millisecond || got.arg != "pik" {
		t.Fatalf("call = %+v, want pik at 700ms", got)
	}
	if d.Pending() {
		t.Fatalf("Pending() = true after fire")
	}

	clock.Advance(time.Second)
	if len(*calls) != 1 {
		t.Fatalf("fn ran again without a new Call")
	}
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	d, clock, calls := newFake(500 * time.Millisecond)

	d.Call("a")
	clock.Advance(600 * time.Millisecond)
	d.Call("b")
	clock.Advance(500 * time.Millisecond)

	if len(*calls) != 2 || (*calls)[0].arg != "a" || (*calls)[1].arg != "b" {
		t.Fatalf("calls = %+v, want a then b", *calls)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d, clock, calls := newFake(500 * time.Millisecond)

	d.Call("x")
	clock.Advance(200 * time.Millisecond)
	d.Cancel()
	if d.Pending() {
		t.Fatalf("Pending() = true after Cancel")
	}
	clock.Advance(time.Second)
	if len(*calls) != 0 {
		t.Fatalf("cancelled call ran: %+v", *calls)
	}

	// Cancel with nothing pending is harmless.
	d.Cancel()
}

func TestDebouncer_StaleFireIgnored(t *testing.T) {
	var got []int
	d := New(time.Hour, func(n int) { got = append(got, n) })
	d.Call(1)
	seq := d.seq
	d.Call(2)

	// The first timer firing after it was replaced does nothing.
	d.fire(seq)
	if len(got) != 0 {
		t.Fatalf("stale fire ran fn with %v", got)
	}
	d.Cancel()
}

func TestDebouncer_RealTimer(t *testing.T) {
	var (
		mu  sync.Mutex
		got []int
	)
	done := make(chan struct{})
	d := New(20*time.Millisecond, func(n int) {
		mu.Lock()
		got = append(got, n)
		mu.Unlock()
		close(done)
	})

	for i := 1; i <= 5; i++ {
		d.Call(i)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced function never ran")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != 5 {
		t.Fatalf("got %v, want [5]", got)
	}
}

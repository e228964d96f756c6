package simtemp

import (
	"sync"
	"time"
)

// fakeClock hands out manually-fired timers so tests control every
// sampling cycle.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Timer(d time.Duration) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{ch: make(chan time.Time, 1), initial: d}
	c.timers = append(c.timers, t)

	return t
}

// timer returns the i-th timer created, blocking-free; tests poll via
// require.Eventually before calling.
func (c *fakeClock) timer(i int) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i >= len(c.timers) {
		return nil
	}

	return c.timers[i]
}

func (c *fakeClock) timerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.timers)
}

type fakeTimer struct {
	mu      sync.Mutex
	ch      chan time.Time
	initial time.Duration
	resets  []time.Duration
	stopped bool
}

func (t *fakeTimer) Chan() <-chan time.Time { return t.ch }

func (t *fakeTimer) Reset(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resets = append(t.resets, d)
}

func (t *fakeTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
}

func (t *fakeTimer) fire(at time.Time) {
	t.ch <- at
}

func (t *fakeTimer) lastReset() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.resets) == 0 {
		return 0, false
	}

	return t.resets[len(t.resets)-1], true
}

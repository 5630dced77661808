package schedule

import (
	"sort"
	"sync"
	"time"
)

// Timer is a one-shot scheduled callback. Stop cancels it and reports
// whether the callback had not yet fired.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so tests can advance it deterministically.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc schedules f to run once after d. The returned Timer can
	// cancel the callback before it fires.
	AfterFunc(d time.Duration, f func()) Timer
}

// LoopClock is the production Clock. Callbacks are posted onto the loop so
// they execute as serialized turns rather than on the runtime timer
// goroutine.
type LoopClock struct {
	loop *Loop
}

// NewLoopClock creates a Clock whose callbacks run on the given loop.
func NewLoopClock(loop *Loop) *LoopClock {
	return &LoopClock{loop: loop}
}

// Now returns the current wall-clock time.
func (c *LoopClock) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f on the loop after d.
func (c *LoopClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, func() {
		c.loop.Post(f)
	})
}

// FakeClock is a manual Clock for tests. Advance moves virtual time forward
// and fires due timers synchronously, in deadline order.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *FakeClock
	deadline time.Time
	f        func()
	stopped  bool
	fired    bool
}

// NewFakeClock creates a FakeClock starting at an arbitrary fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current virtual time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f at now+d in virtual time.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{
		clock:    c,
		deadline: c.now.Add(d),
		f:        f,
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves virtual time forward by d, firing every timer whose deadline
// is reached, in deadline order. Callbacks run synchronously on the caller's
// goroutine.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now

	var due []*fakeTimer
	remaining := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.deadline.After(now) {
			t.fired = true
			due = append(due, t)
		} else if !t.stopped && !t.fired {
			remaining = append(remaining, t)
		}
	}
	c.timers = remaining
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of scheduled, unfired timers.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Stop cancels the timer if it has not fired yet.
func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

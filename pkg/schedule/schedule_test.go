package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopSerializesTasks(t *testing.T) {
	loop := NewLoop()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		loop.Post(func() { order = append(order, i) })
	}

	ran := loop.RunUntilIdle()
	assert.Equal(t, 5, ran)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestLoopRunStopsOnCancel(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	executed := make(chan struct{})
	loop.Post(func() { close(executed) })

	select {
	case <-executed:
	case <-time.After(time.Second):
		t.Fatal("task never executed")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}

	// Posts after stop are dropped, not blocked.
	assert.False(t, loop.Post(func() {}))
}

func TestLoopRunUntilIdleRunsTasksPostedWhileDraining(t *testing.T) {
	loop := NewLoop()

	var got []string
	loop.Post(func() {
		got = append(got, "first")
		loop.Post(func() { got = append(got, "second") })
	})

	loop.RunUntilIdle()
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestFakeClockAdvanceFiresDueTimers(t *testing.T) {
	clock := NewFakeClock()

	var fired []string
	clock.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "a") })
	clock.AfterFunc(50*time.Millisecond, func() { fired = append(fired, "b") })
	clock.AfterFunc(500*time.Millisecond, func() { fired = append(fired, "c") })

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"b", "a"}, fired, "due timers fire in deadline order")
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(400 * time.Millisecond)
	assert.Equal(t, []string{"b", "a", "c"}, fired)
	assert.Equal(t, 0, clock.Pending())
}

func TestFakeClockStop(t *testing.T) {
	clock := NewFakeClock()

	fired := false
	timer := clock.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	clock.Advance(2 * time.Second)
	assert.False(t, fired)

	// Stopping again reports false.
	assert.False(t, timer.Stop())
}

func TestManualFrames(t *testing.T) {
	frames := NewManualFrames()

	count := 0
	frames.Request(func() { count++ })
	frames.Request(func() { count++ })
	require.Equal(t, 2, frames.Pending())

	frames.Fire()
	assert.Equal(t, 2, count)
	assert.Equal(t, 0, frames.Pending())

	// Callbacks requested during a frame wait for the next one.
	frames.Request(func() {
		frames.Request(func() { count += 10 })
		count++
	})
	frames.Fire()
	assert.Equal(t, 3, count)
	frames.Fire()
	assert.Equal(t, 13, count)
}

func TestDebouncerCoalesces(t *testing.T) {
	clock := NewFakeClock()

	var calls []int
	d := NewDebouncer(clock, 300*time.Millisecond, func(v int) {
		calls = append(calls, v)
	})

	// A burst of triggers within one window collapses to a single
	// execution with the last trigger's context.
	d.Trigger(1)
	clock.Advance(100 * time.Millisecond)
	d.Trigger(2)
	clock.Advance(100 * time.Millisecond)
	d.Trigger(3)

	clock.Advance(299 * time.Millisecond)
	assert.Empty(t, calls, "window restarted by each trigger")

	clock.Advance(1 * time.Millisecond)
	assert.Equal(t, []int{3}, calls)

	// A later, separate trigger executes independently.
	d.Trigger(4)
	clock.Advance(300 * time.Millisecond)
	assert.Equal(t, []int{3, 4}, calls)
}

func TestDebouncerCancel(t *testing.T) {
	clock := NewFakeClock()

	fired := false
	d := NewDebouncer(clock, 100*time.Millisecond, func(struct{}) { fired = true })

	assert.False(t, d.Cancel(), "nothing pending yet")

	d.Trigger(struct{}{})
	assert.True(t, d.Pending())
	assert.True(t, d.Cancel())

	clock.Advance(time.Second)
	assert.False(t, fired)
}

// queuedClock hands back timers that have always already fired: Stop
// reports the lost race and the queued callbacks run whenever the test
// says so, like loop-posted timer callbacks landing late.
type queuedClock struct {
	now     time.Time
	pending []func()
}

func (c *queuedClock) Now() time.Time { return c.now }

func (c *queuedClock) AfterFunc(d time.Duration, f func()) Timer {
	c.pending = append(c.pending, f)
	return firedTimer{}
}

type firedTimer struct{}

func (firedTimer) Stop() bool { return false }

func TestDebouncerStaleCallbackRunsHandlerOnce(t *testing.T) {
	clock := &queuedClock{}

	var calls []int
	d := NewDebouncer(clock, 100*time.Millisecond, func(v int) {
		calls = append(calls, v)
	})

	// The first timer fires and queues its callback just before the second
	// trigger lands, so Stop reports false and both callbacks will run.
	d.Trigger(1)
	d.Trigger(2)
	require.Len(t, clock.pending, 2)

	for _, cb := range clock.pending {
		cb()
	}

	assert.Equal(t, []int{2}, calls, "only the latest trigger's callback executes the handler")
	assert.False(t, d.Pending())
}

func TestLoopClockPostsToLoop(t *testing.T) {
	loop := NewLoop()
	clock := NewLoopClock(loop)

	fired := make(chan struct{})
	clock.AfterFunc(10*time.Millisecond, func() { close(fired) })

	// The callback lands on the loop queue, not on the timer goroutine.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-fired:
			return
		case <-deadline:
			t.Fatal("timer callback never ran on loop")
		default:
			loop.RunUntilIdle()
			time.Sleep(5 * time.Millisecond)
		}
	}
}

package schedule

import "time"

// Debouncer coalesces bursts of triggers into one trailing-edge execution.
// Each Trigger restarts the window; when the window elapses without a new
// trigger, the handler runs once with the most recent trigger's value.
//
// A Debouncer is not safe for concurrent use: Trigger, Cancel, and the
// handler itself must all run on the same loop.
type Debouncer[T any] struct {
	clock  Clock
	window time.Duration
	fn     func(T)
	timer  Timer
	gen    uint64
	last   T
}

// NewDebouncer creates a debouncer with the given window and handler.
func NewDebouncer[T any](clock Clock, window time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		clock:  clock,
		window: window,
		fn:     fn,
	}
}

// Trigger records v as the pending context and restarts the window.
func (d *Debouncer[T]) Trigger(v T) {
	d.last = v
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.window, func() {
		// Stop can lose the race against a timer that already fired and
		// queued its callback onto the loop; the generation check turns
		// that stale callback into a no-op so the handler runs once.
		if gen != d.gen {
			return
		}
		d.timer = nil
		d.fn(d.last)
	})
}

// Cancel drops any pending execution. It reports whether one was pending.
func (d *Debouncer[T]) Cancel() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.gen++
	d.timer = nil
	return true
}

// Pending reports whether an execution is scheduled.
func (d *Debouncer[T]) Pending() bool {
	return d.timer != nil
}

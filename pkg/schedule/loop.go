// Package schedule provides the cooperative event loop and the explicit
// timer and frame abstractions the enhancement engine runs on.
//
// Everything with state (mutation batches, debounce firings, post-paint
// callbacks, bridge requests) executes as a serialized turn on one Loop, so
// the engine's flags never need locks. Timers and frames are explicit,
// one-shot, and cancellable so tests can advance virtual time with FakeClock
// and fire frames with ManualFrames instead of waiting on real delays.
package schedule

import (
	"context"
	"sync"
)

// Loop is a single-goroutine task executor. Post enqueues a task; Run
// executes tasks in order until the context is cancelled. Turns interleave
// but never run in parallel.
type Loop struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a loop with a buffered task queue.
func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), 128),
		done:  make(chan struct{}),
	}
}

// Post enqueues a task for execution on the loop. It reports false if the
// loop has stopped and the task was dropped.
func (l *Loop) Post(task func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- task:
		return true
	case <-l.done:
		return false
	}
}

// Run executes tasks until the context is cancelled. It must be called from
// exactly one goroutine.
func (l *Loop) Run(ctx context.Context) {
	defer l.stop()
	for {
		select {
		case task := <-l.tasks:
			task()
		case <-ctx.Done():
			return
		}
	}
}

// RunUntilIdle executes already-queued tasks until the queue is empty, then
// returns the number of tasks run. Tasks posted while draining are executed
// too. Intended for tests driving the loop deterministically.
func (l *Loop) RunUntilIdle() int {
	n := 0
	for {
		select {
		case task := <-l.tasks:
			task()
			n++
		default:
			return n
		}
	}
}

// Stop marks the loop as stopped so future Post calls drop their task.
func (l *Loop) Stop() {
	l.stop()
}

func (l *Loop) stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

package schedule

// Frames schedules callbacks to run after the next render frame. The
// production implementation rides the page's requestAnimationFrame; tests
// use ManualFrames and fire frames explicitly.
type Frames interface {
	// Request schedules f to run once after the next frame paints.
	Request(f func())
}

// ManualFrames is a Frames implementation for tests: requested callbacks
// queue up until Fire is called.
type ManualFrames struct {
	pending []func()
}

// NewManualFrames creates an empty manual frame scheduler.
func NewManualFrames() *ManualFrames {
	return &ManualFrames{}
}

// Request queues f for the next Fire.
func (m *ManualFrames) Request(f func()) {
	m.pending = append(m.pending, f)
}

// Fire runs one frame: every callback queued before the call executes, in
// order. Callbacks requested during Fire wait for the next frame.
func (m *ManualFrames) Fire() {
	batch := m.pending
	m.pending = nil
	for _, f := range batch {
		f()
	}
}

// Pending returns the number of queued callbacks.
func (m *ManualFrames) Pending() int {
	return len(m.pending)
}

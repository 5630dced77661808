package maps

import "fmt"

// InvalidateCall records the options of one InvalidateSize invocation.
type InvalidateCall struct {
	Animate bool
	Pan     bool
}

// FakeInstance is an in-memory Instance for tests. Fields are exported so
// assertions can inspect the resulting state, and Fail injects an error for
// any subset of operations by method name.
type FakeInstance struct {
	Zoom    float64
	Center  LatLng
	MinZoom float64

	MaxBounds    *Bounds
	WrapDisabled bool

	InvalidateCalls []InvalidateCall
	ZoomAnimated    bool
	PanAnimated     bool

	// Fail maps a method name ("getZoom", "setZoom", "getCenter", "panTo",
	// "invalidateSize", "setMaxBounds", "setMinZoom", "disableWorldWrap")
	// to true to make that call fail.
	Fail map[string]bool
}

// NewFakeInstance creates a fake map at the given zoom and center.
func NewFakeInstance(zoom float64, center LatLng) *FakeInstance {
	return &FakeInstance{
		Zoom:   zoom,
		Center: center,
		Fail:   make(map[string]bool),
	}
}

func (f *FakeInstance) fail(method string) error {
	if f.Fail[method] {
		return fmt.Errorf("host library threw in %s", method)
	}
	return nil
}

func (f *FakeInstance) GetZoom() (float64, error) {
	if err := f.fail("getZoom"); err != nil {
		return 0, err
	}
	return f.Zoom, nil
}

func (f *FakeInstance) SetZoom(zoom float64, animate bool) error {
	if err := f.fail("setZoom"); err != nil {
		return err
	}
	f.Zoom = zoom
	f.ZoomAnimated = animate
	return nil
}

func (f *FakeInstance) GetCenter() (LatLng, error) {
	if err := f.fail("getCenter"); err != nil {
		return LatLng{}, err
	}
	return f.Center, nil
}

func (f *FakeInstance) PanTo(center LatLng, animate bool) error {
	if err := f.fail("panTo"); err != nil {
		return err
	}
	f.Center = center
	f.PanAnimated = animate
	return nil
}

func (f *FakeInstance) InvalidateSize(animate, pan bool) error {
	if err := f.fail("invalidateSize"); err != nil {
		return err
	}
	f.InvalidateCalls = append(f.InvalidateCalls, InvalidateCall{Animate: animate, Pan: pan})
	return nil
}

func (f *FakeInstance) SetMaxBounds(b Bounds) error {
	if err := f.fail("setMaxBounds"); err != nil {
		return err
	}
	f.MaxBounds = &b
	return nil
}

func (f *FakeInstance) SetMinZoom(zoom float64) error {
	if err := f.fail("setMinZoom"); err != nil {
		return err
	}
	f.MinZoom = zoom
	return nil
}

func (f *FakeInstance) DisableWorldWrap() error {
	if err := f.fail("disableWorldWrap"); err != nil {
		return err
	}
	f.WrapDisabled = true
	return nil
}

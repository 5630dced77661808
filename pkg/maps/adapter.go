package maps

import (
	"github.com/fieldnote/obsmap/pkg/config"
	"github.com/fieldnote/obsmap/pkg/logging"
)

// Adapter performs the viewport adjustments around the full-height layout.
// Every library call is isolated: a failure is logged and the remaining
// calls still run, so a partially broken host library leaves the styles
// applied and the page usable.
type Adapter struct {
	cfg    config.MapConfig
	logger *logging.Logger
}

// NewAdapter creates an adapter with the given zoom tuning.
func NewAdapter(cfg config.MapConfig, logger *logging.Logger) *Adapter {
	return &Adapter{cfg: cfg, logger: logger}
}

// Capture snapshots the instance's current zoom and center. Unreadable
// values are left nil; the snapshot is still usable for a partial restore.
func (a *Adapter) Capture(inst Instance) *Viewport {
	vp := &Viewport{}

	if zoom, err := inst.GetZoom(); err == nil {
		vp.Zoom = &zoom
	} else {
		a.logger.Warnf("capturing zoom failed: %v", err)
	}

	if center, err := inst.GetCenter(); err == nil {
		vp.Center = &center
	} else {
		a.logger.Warnf("capturing center failed: %v", err)
	}

	return vp
}

// Fit adjusts the instance for the full-height layout: zooms out one step
// when above the floor, invalidates the rendered size without animation so
// it cannot race the CSS transition, restricts panning to the full-earth
// box, raises the minimum zoom, and marks tile layers non-wrapping.
func (a *Adapter) Fit(inst Instance) {
	if zoom, err := inst.GetZoom(); err != nil {
		a.logger.Warnf("reading zoom failed: %v", err)
	} else if zoom > a.cfg.ZoomFloor {
		next := zoom - a.cfg.ZoomStep
		if next < a.cfg.ZoomFloor {
			next = a.cfg.ZoomFloor
		}
		a.call("setZoom", func() error { return inst.SetZoom(next, false) })
	}

	a.call("invalidateSize", func() error { return inst.InvalidateSize(false, false) })
	a.call("setMaxBounds", func() error { return inst.SetMaxBounds(FullEarth()) })
	a.call("setMinZoom", func() error { return inst.SetMinZoom(a.cfg.MinZoom) })
	a.call("disableWorldWrap", func() error { return inst.DisableWorldWrap() })
}

// Restore re-applies a captured viewport without animation and invalidates
// the rendered size. Like Fit, failures are logged and never propagate.
func (a *Adapter) Restore(inst Instance, vp Viewport) {
	if vp.Zoom != nil {
		zoom := *vp.Zoom
		a.call("setZoom", func() error { return inst.SetZoom(zoom, false) })
	}
	if vp.Center != nil {
		center := *vp.Center
		a.call("panTo", func() error { return inst.PanTo(center, false) })
	}
	a.call("invalidateSize", func() error { return inst.InvalidateSize(false, false) })
}

// call isolates one library call.
func (a *Adapter) call(name string, fn func() error) {
	if err := fn(); err != nil {
		a.logger.Warnf("map %s failed: %v", name, err)
	}
}

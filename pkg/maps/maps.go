// Package maps adapts the host page's mapping library. The engine never
// depends on the library's real surface directly: Instance is the narrow
// set of viewport operations the enhancement needs, Resolver locates a live
// instance through an ordered list of lookup strategies, and Adapter applies
// and restores viewport adjustments with a strict no-propagate error
// contract, so a throwing host library degrades the page to CSS-only layout
// instead of breaking the pipeline.
package maps

// LatLng is a geographic coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a rectangular geographic bounding box.
type Bounds struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
}

// FullEarth returns the bounding box covering the full valid
// latitude/longitude range. Applied as max bounds it prevents horizontal
// world repetition.
func FullEarth() Bounds {
	return Bounds{
		SouthWest: LatLng{Lat: -90, Lng: -180},
		NorthEast: LatLng{Lat: 90, Lng: 180},
	}
}

// Viewport is a snapshot of the library's viewport state plus the map
// container's inline height, captured before the first adjustment and used
// to restore on disable. Nil fields were unreadable at capture time.
type Viewport struct {
	Zoom      *float64
	Center    *LatLng
	MapHeight string
}

// Instance is a handle to a live mapping library instance. Every method can
// fail: the host library runs in the page and throws freely.
type Instance interface {
	// GetZoom returns the current zoom level.
	GetZoom() (float64, error)

	// SetZoom sets the zoom level, optionally animated.
	SetZoom(zoom float64, animate bool) error

	// GetCenter returns the current map center.
	GetCenter() (LatLng, error)

	// PanTo pans the map to the given center, optionally animated.
	PanTo(center LatLng, animate bool) error

	// InvalidateSize tells the library its container size changed.
	InvalidateSize(animate, pan bool) error

	// SetMaxBounds restricts panning to the given box.
	SetMaxBounds(b Bounds) error

	// SetMinZoom raises the library's minimum zoom level.
	SetMinZoom(zoom float64) error

	// DisableWorldWrap marks tile layers as non-wrapping.
	DisableWorldWrap() error
}

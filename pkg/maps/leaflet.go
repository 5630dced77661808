package maps

import (
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/fieldnote/obsmap/pkg/dom"
	"github.com/fieldnote/obsmap/pkg/logging"
)

// LeafletOptions configures the live Leaflet lookup strategies.
type LeafletOptions struct {
	// MapSelector matches the map container element, e.g. "#map".
	MapSelector string

	// GlobalName is the host-page global holding the map singleton,
	// e.g. "inatMap". Empty disables the global fallback strategy.
	GlobalName string
}

// LeafletStrategies returns the ordered live lookup strategies: the
// library's per-element instance registry first, then the host page's
// global singleton.
func LeafletStrategies(page playwright.Page, opts LeafletOptions, logger *logging.Logger) []Strategy {
	strategies := []Strategy{
		{
			Name: "leaflet-registry",
			Resolve: func(dom.Element) (Instance, bool) {
				accessor := registryAccessor(opts.MapSelector)
				return probe(page, accessor, logger)
			},
		},
	}
	if opts.GlobalName != "" {
		strategies = append(strategies, Strategy{
			Name: "host-global",
			Resolve: func(dom.Element) (Instance, bool) {
				accessor := globalAccessor(opts.GlobalName)
				return probe(page, accessor, logger)
			},
		})
	}
	return strategies
}

// registryAccessor builds a JS expression resolving the instance through
// Leaflet's internal registry, keyed by the element's library-assigned id.
func registryAccessor(selector string) string {
	return fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (el && el._leaflet_id && window.L && window.L.Map && window.L.Map._instances) {
			return window.L.Map._instances[el._leaflet_id] || null;
		}
		return null;
	})()`, selector)
}

// globalAccessor builds a JS expression resolving a host-page global that
// quacks like a map instance.
func globalAccessor(name string) string {
	return fmt.Sprintf(`(() => {
		const m = window[%q];
		return (m && typeof m.getZoom === 'function') ? m : null;
	})()`, name)
}

// probe evaluates the accessor once; a live hit yields a LeafletInstance
// bound to that accessor.
func probe(page playwright.Page, accessor string, logger *logging.Logger) (Instance, bool) {
	result, err := page.Evaluate(`() => ` + accessor + ` !== null`)
	if err != nil {
		logger.Debugf("instance probe failed: %v", err)
		return nil, false
	}
	if found, _ := result.(bool); !found {
		return nil, false
	}
	return &LeafletInstance{page: page, accessor: accessor}, true
}

// LeafletInstance drives a live Leaflet map through page-side evaluation.
// The accessor re-resolves the instance on every call, so a remounted map
// never leaves the handle pointing at a dead object.
type LeafletInstance struct {
	page     playwright.Page
	accessor string
}

// eval runs body with `map` bound to the resolved instance and `arg` to the
// given argument.
func (l *LeafletInstance) eval(body string, arg interface{}) (interface{}, error) {
	script := fmt.Sprintf(`(arg) => {
		const map = %s;
		if (!map) throw new Error('map instance unavailable');
		%s
	}`, l.accessor, body)
	return l.page.Evaluate(script, arg)
}

func (l *LeafletInstance) GetZoom() (float64, error) {
	result, err := l.eval(`return map.getZoom();`, nil)
	if err != nil {
		return 0, fmt.Errorf("getZoom: %w", err)
	}
	zoom, ok := toFloat(result)
	if !ok {
		return 0, fmt.Errorf("getZoom returned %T, want number", result)
	}
	return zoom, nil
}

func (l *LeafletInstance) SetZoom(zoom float64, animate bool) error {
	_, err := l.eval(`map.setZoom(arg.zoom, {animate: arg.animate});`, map[string]interface{}{
		"zoom":    zoom,
		"animate": animate,
	})
	if err != nil {
		return fmt.Errorf("setZoom: %w", err)
	}
	return nil
}

func (l *LeafletInstance) GetCenter() (LatLng, error) {
	result, err := l.eval(`const c = map.getCenter(); return {lat: c.lat, lng: c.lng};`, nil)
	if err != nil {
		return LatLng{}, fmt.Errorf("getCenter: %w", err)
	}
	obj, ok := result.(map[string]interface{})
	if !ok {
		return LatLng{}, fmt.Errorf("getCenter returned %T, want object", result)
	}
	lat, latOK := toFloat(obj["lat"])
	lng, lngOK := toFloat(obj["lng"])
	if !latOK || !lngOK {
		return LatLng{}, fmt.Errorf("getCenter returned malformed coordinates")
	}
	return LatLng{Lat: lat, Lng: lng}, nil
}

func (l *LeafletInstance) PanTo(center LatLng, animate bool) error {
	_, err := l.eval(`map.panTo(window.L.latLng(arg.lat, arg.lng), {animate: arg.animate});`,
		map[string]interface{}{
			"lat":     center.Lat,
			"lng":     center.Lng,
			"animate": animate,
		})
	if err != nil {
		return fmt.Errorf("panTo: %w", err)
	}
	return nil
}

func (l *LeafletInstance) InvalidateSize(animate, pan bool) error {
	_, err := l.eval(`map.invalidateSize({animate: arg.animate, pan: arg.pan});`,
		map[string]interface{}{
			"animate": animate,
			"pan":     pan,
		})
	if err != nil {
		return fmt.Errorf("invalidateSize: %w", err)
	}
	return nil
}

func (l *LeafletInstance) SetMaxBounds(b Bounds) error {
	_, err := l.eval(`map.setMaxBounds(window.L.latLngBounds(
		window.L.latLng(arg.swLat, arg.swLng),
		window.L.latLng(arg.neLat, arg.neLng)));`,
		map[string]interface{}{
			"swLat": b.SouthWest.Lat,
			"swLng": b.SouthWest.Lng,
			"neLat": b.NorthEast.Lat,
			"neLng": b.NorthEast.Lng,
		})
	if err != nil {
		return fmt.Errorf("setMaxBounds: %w", err)
	}
	return nil
}

func (l *LeafletInstance) SetMinZoom(zoom float64) error {
	_, err := l.eval(`map.setMinZoom(arg);`, zoom)
	if err != nil {
		return fmt.Errorf("setMinZoom: %w", err)
	}
	return nil
}

func (l *LeafletInstance) DisableWorldWrap() error {
	_, err := l.eval(`map.eachLayer((layer) => {
		if (layer.options && layer.getTileUrl) {
			layer.options.noWrap = true;
			if (layer.redraw) layer.redraw();
		}
	});`, nil)
	if err != nil {
		return fmt.Errorf("disableWorldWrap: %w", err)
	}
	return nil
}

// toFloat normalizes the number types Playwright evaluation can hand back.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Package enhance is the in-page enhancement engine: the session state, the
// stylesheet manager, the mutation watcher, and the controller that owns
// them for one page session. All state lives on one explicit controller
// object and is touched only from the session's event loop.
package enhance

import (
	"github.com/fieldnote/obsmap/pkg/dom"
	"github.com/fieldnote/obsmap/pkg/maps"
)

// Element cache keys.
const (
	cacheMap        = "map"
	cacheObsPanel   = "obsPanel"
	cacheLeafletMap = "leafletMap"
)

// State is the page-session store: the mirrored preference, the progress
// flags, the element cache, and the captured original viewport. It is
// created at session start, mutated only on the session loop, and discarded
// on navigation.
type State struct {
	// Enabled mirrors the persisted fullMapHeight preference.
	Enabled bool

	// StylesApplied guards Apply/Remove idempotency.
	StylesApplied bool

	// MapFound is set once the watcher sees the map mount.
	MapFound bool

	// Original is the viewport snapshot captured on the first successful
	// adjustment, cleared only by a completed Remove.
	Original *maps.Viewport

	cache map[string]dom.Element
}

// NewState creates session state with the given enabled mirror.
func NewState(enabled bool) *State {
	return &State{
		Enabled: enabled,
		cache:   make(map[string]dom.Element),
	}
}

// CachedElement returns the cached element for key, re-running lookup when
// there is no cached handle or the cached one is no longer attached to the
// document.
func (s *State) CachedElement(key string, lookup func() (dom.Element, bool)) (dom.Element, bool) {
	if el, ok := s.cache[key]; ok && el.Attached() {
		return el, true
	}

	el, ok := lookup()
	if ok {
		s.cache[key] = el
	} else {
		delete(s.cache, key)
	}
	return el, ok
}

// DropCached removes one cached handle.
func (s *State) DropCached(key string) {
	delete(s.cache, key)
}

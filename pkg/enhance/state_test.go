package enhance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldnote/obsmap/pkg/dom"
)

func TestCachedElementRefreshesOnDetach(t *testing.T) {
	doc, err := dom.NewFakeDocument("https://example.org/observations", listingFixture)
	require.NoError(t, err)

	state := NewState(true)

	lookups := 0
	lookup := func() (dom.Element, bool) {
		lookups++
		return doc.ElementByID("map")
	}

	el, ok := state.CachedElement(cacheMap, lookup)
	require.True(t, ok)
	require.Equal(t, 1, lookups)

	// While attached, the cached handle is reused.
	el2, ok := state.CachedElement(cacheMap, lookup)
	require.True(t, ok)
	assert.Equal(t, 1, lookups)
	assert.Equal(t, el.ID(), el2.ID())

	// Detaching the node invalidates the cache and forces a re-lookup.
	require.True(t, doc.Detach("map"))
	_, ok = state.CachedElement(cacheMap, lookup)
	assert.False(t, ok)
	assert.Equal(t, 2, lookups)

	// The host remounting the element makes lookups succeed again.
	require.NoError(t, doc.AppendHTML("#app", `<div id="map"></div>`))
	_, ok = state.CachedElement(cacheMap, lookup)
	assert.True(t, ok)
	assert.Equal(t, 3, lookups)
}

func TestDropCached(t *testing.T) {
	doc, err := dom.NewFakeDocument("https://example.org/observations", listingFixture)
	require.NoError(t, err)

	state := NewState(true)

	lookups := 0
	lookup := func() (dom.Element, bool) {
		lookups++
		return doc.ElementByID("map")
	}

	_, ok := state.CachedElement(cacheMap, lookup)
	require.True(t, ok)

	state.DropCached(cacheMap)

	_, ok = state.CachedElement(cacheMap, lookup)
	require.True(t, ok)
	assert.Equal(t, 2, lookups)
}

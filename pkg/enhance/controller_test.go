package enhance

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldnote/obsmap/pkg/config"
	"github.com/fieldnote/obsmap/pkg/dom"
	"github.com/fieldnote/obsmap/pkg/maps"
	"github.com/fieldnote/obsmap/pkg/schedule"
)

type controllerFixture struct {
	ctrl   *Controller
	doc    *dom.FakeDocument
	inst   *maps.FakeInstance
	loop   *schedule.Loop
	clock  *schedule.FakeClock
	frames *schedule.ManualFrames
	prefs  *config.FilePrefs
}

func newControllerFixture(t *testing.T, url, fixture string) *controllerFixture {
	t.Helper()

	doc, err := dom.NewFakeDocument(url, fixture)
	require.NoError(t, err)

	logger := newTestLogger(t)

	prefs, err := config.NewFilePrefs(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)

	inst := maps.NewFakeInstance(5, maps.LatLng{Lat: 10, Lng: 20})

	loop := schedule.NewLoop()
	clock := schedule.NewFakeClock()
	frames := schedule.NewManualFrames()

	ctrl, err := NewController(Options{
		Config: config.Default(),
		Doc:    doc,
		Loop:   loop,
		Clock:  clock,
		Frames: frames,
		Strategies: []maps.Strategy{{
			Name: "test",
			Resolve: func(dom.Element) (maps.Instance, bool) {
				return inst, true
			},
		}},
		Prefs:  prefs,
		Logger: logger,
	})
	require.NoError(t, err)

	return &controllerFixture{
		ctrl: ctrl, doc: doc, inst: inst,
		loop: loop, clock: clock, frames: frames, prefs: prefs,
	}
}

// await drains the loop until fn's result arrives.
func await[T any](t *testing.T, loop *schedule.Loop, fn func() T) T {
	t.Helper()

	result := make(chan T, 1)
	go func() { result <- fn() }()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case v := <-result:
			return v
		case <-deadline:
			t.Fatal("loop never settled")
		default:
			loop.RunUntilIdle()
		}
	}
}

func TestControllerAppliesOnMapMount(t *testing.T) {
	f := newControllerFixture(t, "https://www.inaturalist.org/observations", listingFixtureNoMap)
	require.NoError(t, f.ctrl.Start())
	f.loop.RunUntilIdle()

	// Map not mounted yet: the initial attempt is a silent no-op.
	assert.False(t, f.doc.HasStylesheet(StylesheetID))

	// The SPA mounts the map; the watcher debounces, then applies.
	require.NoError(t, f.doc.AppendHTML("#app",
		`<div id="map" class="observations-map" style="height: 420px"></div>`))
	f.clock.Advance(300 * time.Millisecond)
	f.loop.RunUntilIdle()

	assert.True(t, f.doc.HasStylesheet(StylesheetID))
	assert.True(t, f.ctrl.State().StylesApplied)

	f.frames.Fire()
	assert.Equal(t, 4.5, f.inst.Zoom)
}

func TestControllerAppliesImmediatelyWhenMapPresent(t *testing.T) {
	f := newControllerFixture(t, "https://www.inaturalist.org/observations", listingFixture)
	require.NoError(t, f.ctrl.Start())
	f.loop.RunUntilIdle()

	assert.True(t, f.doc.HasStylesheet(StylesheetID))
}

func TestControllerToggleCycle(t *testing.T) {
	f := newControllerFixture(t, "https://www.inaturalist.org/observations", listingFixture)
	require.NoError(t, f.ctrl.Start())
	f.loop.RunUntilIdle()
	f.frames.Fire()
	require.Equal(t, 4.5, f.inst.Zoom)

	err := await(t, f.loop, func() error { return f.ctrl.Toggle(false) })
	require.NoError(t, err)

	assert.False(t, f.doc.HasStylesheet(StylesheetID))
	assert.InDelta(t, 5.0, f.inst.Zoom, 1e-9, "viewport restored on disable")
	assert.False(t, config.FullMapHeight(f.prefs), "preference persisted")

	err = await(t, f.loop, func() error { return f.ctrl.Toggle(true) })
	require.NoError(t, err)
	assert.True(t, f.doc.HasStylesheet(StylesheetID))
	assert.True(t, config.FullMapHeight(f.prefs))
}

func TestControllerToggleOnIneligiblePage(t *testing.T) {
	f := newControllerFixture(t, "https://www.inaturalist.org/observations/someuser", listingFixture)
	require.NoError(t, f.ctrl.Start())
	f.loop.RunUntilIdle()

	require.NoError(t, await(t, f.loop, func() error { return f.ctrl.Toggle(true) }))

	// The mirror reports enabled even though nothing was injected.
	assert.True(t, await(t, f.loop, f.ctrl.Enabled))
	assert.False(t, f.doc.HasStylesheet(StylesheetID))
}

func TestControllerSeedsEnabledFromPrefs(t *testing.T) {
	f := newControllerFixture(t, "https://www.inaturalist.org/observations", listingFixture)

	// Fresh store: the default is enabled.
	assert.True(t, f.ctrl.State().Enabled)

	// A persisted false seeds a disabled session.
	require.NoError(t, config.SetFullMapHeight(f.prefs, false))

	logger := newTestLogger(t)

	ctrl2, err := NewController(Options{
		Config: config.Default(),
		Doc:    f.doc,
		Loop:   schedule.NewLoop(),
		Clock:  schedule.NewFakeClock(),
		Frames: schedule.NewManualFrames(),
		Prefs:  f.prefs,
		Logger: logger,
	})
	require.NoError(t, err)
	assert.False(t, ctrl2.State().Enabled)
}

func TestControllerDisabledSessionIgnoresMapMount(t *testing.T) {
	f := newControllerFixture(t, "https://www.inaturalist.org/observations", listingFixtureNoMap)
	require.NoError(t, f.ctrl.Start())
	f.loop.RunUntilIdle()

	require.NoError(t, await(t, f.loop, func() error { return f.ctrl.Toggle(false) }))

	require.NoError(t, f.doc.AppendHTML("#app", `<div id="map"></div>`))
	f.clock.Advance(time.Second)
	f.loop.RunUntilIdle()

	assert.False(t, f.doc.HasStylesheet(StylesheetID), "disabled session stays unstyled")
}

package enhance

import (
	"fmt"

	"github.com/fieldnote/obsmap/pkg/classify"
	"github.com/fieldnote/obsmap/pkg/config"
	"github.com/fieldnote/obsmap/pkg/dom"
	"github.com/fieldnote/obsmap/pkg/logging"
	"github.com/fieldnote/obsmap/pkg/maps"
	"github.com/fieldnote/obsmap/pkg/schedule"
)

// Controller owns one page session: the state store, the style manager, and
// the watcher, all running on the session's event loop. Multiple isolated
// controllers can coexist (and do, in tests); nothing here is
// package-global.
type Controller struct {
	loop    *schedule.Loop
	doc     dom.Document
	state   *State
	styles  *StyleManager
	watcher *Watcher
	prefs   config.PrefStore
	logger  *logging.Logger
}

// Options carries the collaborators a controller session needs.
type Options struct {
	Config     *config.Config
	Doc        dom.Document
	Loop       *schedule.Loop
	Clock      schedule.Clock
	Frames     schedule.Frames
	Strategies []maps.Strategy
	Prefs      config.PrefStore
	Logger     *logging.Logger
}

// NewController builds a session. The enabled mirror is seeded from the
// preference store; a failed read defaults to enabled.
func NewController(opts Options) (*Controller, error) {
	classifier, err := classify.New(opts.Config.Site.ListingPaths)
	if err != nil {
		return nil, fmt.Errorf("building classifier: %w", err)
	}

	state := NewState(config.FullMapHeight(opts.Prefs))
	resolver := maps.NewResolver(opts.Logger, opts.Strategies...)
	adapter := maps.NewAdapter(opts.Config.Map, opts.Logger)
	styles := NewStyleManager(
		opts.Doc, classifier, resolver, adapter, opts.Frames,
		state, opts.Config.Layout, opts.Config.Watch, opts.Logger,
	)

	c := &Controller{
		loop:   opts.Loop,
		doc:    opts.Doc,
		state:  state,
		styles: styles,
		prefs:  opts.Prefs,
		logger: opts.Logger,
	}

	c.watcher = NewWatcher(opts.Doc, opts.Config.Watch, state, opts.Clock, opts.Logger,
		func(dom.Mutation) {
			if !c.state.Enabled {
				return
			}
			if err := c.styles.Apply(); err != nil {
				c.logger.Errorf("apply after map mount failed: %v", err)
			}
		})

	return c, nil
}

// Start installs the watcher and, when enabled, posts an initial apply
// attempt for the case where the map mounted before observation began.
func (c *Controller) Start() error {
	if err := c.watcher.Start(); err != nil {
		return err
	}

	c.loop.Post(func() {
		if !c.state.Enabled {
			return
		}
		if err := c.styles.Apply(); err != nil {
			c.logger.Errorf("initial apply failed: %v", err)
		}
	})
	return nil
}

// Toggle updates the mirrored preference and applies or removes the overlay
// accordingly. Safe to call from any goroutine: the work runs as one turn
// on the session loop. A missing anchor is success (nothing to toggle yet);
// only a genuine failure comes back as an error. The preference write is
// logged on failure and never blocks the toggle.
func (c *Controller) Toggle(enabled bool) error {
	errCh := make(chan error, 1)
	posted := c.loop.Post(func() {
		c.state.Enabled = enabled

		if err := config.SetFullMapHeight(c.prefs, enabled); err != nil {
			c.logger.Warnf("persisting preference failed: %v", err)
		}

		if enabled {
			errCh <- c.styles.Apply()
		} else {
			errCh <- c.styles.Remove()
		}
	})
	if !posted {
		return fmt.Errorf("session loop stopped")
	}
	return <-errCh
}

// Enabled reports the mirrored preference, independent of whether styles
// are currently applied. Safe to call from any goroutine.
func (c *Controller) Enabled() bool {
	result := make(chan bool, 1)
	if !c.loop.Post(func() { result <- c.state.Enabled }) {
		return false
	}
	return <-result
}

// State exposes the session state for tests.
func (c *Controller) State() *State {
	return c.state
}

// Styles exposes the style manager for tests.
func (c *Controller) Styles() *StyleManager {
	return c.styles
}

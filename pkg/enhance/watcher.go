package enhance

import (
	"fmt"
	"time"

	"github.com/fieldnote/obsmap/pkg/config"
	"github.com/fieldnote/obsmap/pkg/dom"
	"github.com/fieldnote/obsmap/pkg/logging"
	"github.com/fieldnote/obsmap/pkg/schedule"
)

// Watcher reacts to the host page mounting the map. It observes one bounded
// container, scans added nodes for the map signature, and funnels bursts of
// qualifying batches through a trailing-edge debouncer into the style
// manager. The observation is never torn down (the host is a single-page
// app and can remount the map later); once the map is found and styles are
// applied, batches short-circuit to a cheap flag check.
type Watcher struct {
	doc       dom.Document
	cfg       config.WatchConfig
	state     *State
	debouncer *schedule.Debouncer[dom.Mutation]
	logger    *logging.Logger
}

// NewWatcher creates a watcher whose debounced handler is onSettle, invoked
// with the most recent qualifying batch.
func NewWatcher(
	doc dom.Document,
	cfg config.WatchConfig,
	state *State,
	clock schedule.Clock,
	logger *logging.Logger,
	onSettle func(dom.Mutation),
) *Watcher {
	window := time.Duration(cfg.DebounceMillis) * time.Millisecond
	return &Watcher{
		doc:       doc,
		cfg:       cfg,
		state:     state,
		debouncer: schedule.NewDebouncer(clock, window, onSettle),
		logger:    logger,
	}
}

// Start installs the observation on the configured container.
func (w *Watcher) Start() error {
	if err := w.doc.Observe(w.cfg.ContainerSelector, w.handleBatch); err != nil {
		return fmt.Errorf("starting mutation watcher: %w", err)
	}
	w.logger.Debugf("watching %s for map mount", w.cfg.ContainerSelector)
	return nil
}

// handleBatch processes one mutation batch on the session loop.
func (w *Watcher) handleBatch(batch dom.Mutation) {
	// Settled sessions pay one flag check per batch, nothing more.
	if w.state.MapFound && w.state.StylesApplied {
		return
	}

	for _, el := range batch.Added {
		if w.qualifies(el) {
			if !w.state.MapFound {
				w.state.MapFound = true
				w.logger.Infof("map mount detected")
			}
			w.debouncer.Trigger(batch)
			return
		}
	}
}

// qualifies reports whether an added node signals the map mount: the map
// container's id, its class, or a descendant carrying the library root
// class.
func (w *Watcher) qualifies(el dom.Element) bool {
	if w.cfg.MapID != "" && el.ID() == w.cfg.MapID {
		return true
	}
	if w.cfg.MapClass != "" && el.HasClass(w.cfg.MapClass) {
		return true
	}
	return w.cfg.LibraryRootClass != "" && el.HasDescendantClass(w.cfg.LibraryRootClass)
}

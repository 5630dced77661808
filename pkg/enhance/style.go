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

// StyleManager owns the singleton stylesheet and the post-paint viewport
// follow-up. Apply and Remove are symmetric and independently idempotent:
// any interleaving of calls settles to fully applied or fully removed,
// never a half-applied mixture.
type StyleManager struct {
	doc        dom.Document
	classifier *classify.Classifier
	resolver   *maps.Resolver
	adapter    *maps.Adapter
	frames     schedule.Frames
	state      *State
	layout     config.LayoutConfig
	watch      config.WatchConfig
	logger     *logging.Logger
}

// NewStyleManager wires the manager to one session's collaborators.
func NewStyleManager(
	doc dom.Document,
	classifier *classify.Classifier,
	resolver *maps.Resolver,
	adapter *maps.Adapter,
	frames schedule.Frames,
	state *State,
	layout config.LayoutConfig,
	watch config.WatchConfig,
	logger *logging.Logger,
) *StyleManager {
	return &StyleManager{
		doc:        doc,
		classifier: classifier,
		resolver:   resolver,
		adapter:    adapter,
		frames:     frames,
		state:      state,
		layout:     layout,
		watch:      watch,
		logger:     logger,
	}
}

// Apply injects the overlay stylesheet and schedules the post-paint
// viewport follow-up. It is a silent no-op when already applied, when the
// page is ineligible, or when the anchor element is absent (the next
// mutation batch retries). A genuine injection failure is returned.
func (m *StyleManager) Apply() error {
	if m.state.StylesApplied {
		return nil
	}
	if !m.classifier.Eligible(m.doc.URL()) {
		return nil
	}

	anchor, ok := m.anchor()
	if !ok {
		return nil
	}

	if err := m.doc.AddBodyClass(BodyMarkerClass); err != nil {
		return fmt.Errorf("marking body: %w", err)
	}

	css := BuildStylesheet(m.layout, m.watch)
	if err := m.doc.InsertStylesheet(StylesheetID, css); err != nil {
		// Roll the marker back so no scoped rule can half-engage.
		if rbErr := m.doc.RemoveBodyClass(BodyMarkerClass); rbErr != nil {
			m.logger.Warnf("marker rollback failed: %v", rbErr)
		}
		return fmt.Errorf("injecting stylesheet: %w", err)
	}

	m.state.StylesApplied = true
	m.logger.Infof("overlay applied")

	// Viewport work runs after the next paint so the library measures the
	// post-layout container size. The flag is re-checked at execution time:
	// a toggle that lands before the frame turns this into a no-op.
	m.frames.Request(func() {
		if !m.state.StylesApplied {
			return
		}
		m.fitViewport(anchor)
		if err := m.doc.DispatchResize(); err != nil {
			m.logger.Warnf("synthetic resize failed: %v", err)
		}
	})

	return nil
}

// Remove deletes the stylesheet, clears the marker and flags, and restores
// the captured viewport if one exists. It is a no-op when not applied.
// Restoration failure is logged, never returned; flags clear regardless.
func (m *StyleManager) Remove() error {
	if !m.state.StylesApplied {
		return nil
	}

	var firstErr error
	if err := m.doc.RemoveStylesheet(StylesheetID); err != nil {
		firstErr = fmt.Errorf("removing stylesheet: %w", err)
	}
	if err := m.doc.RemoveBodyClass(BodyMarkerClass); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("clearing body marker: %w", err)
	}

	if m.state.Original != nil {
		m.restoreViewport(*m.state.Original)
		m.state.Original = nil
	}

	m.state.StylesApplied = false
	m.logger.Infof("overlay removed")
	return firstErr
}

// anchor resolves the map container, refreshing the cache when the held
// handle has detached.
func (m *StyleManager) anchor() (dom.Element, bool) {
	return m.state.CachedElement(cacheMap, func() (dom.Element, bool) {
		if m.watch.MapID != "" {
			if el, ok := m.doc.ElementByID(m.watch.MapID); ok {
				return el, true
			}
		}
		if m.watch.MapClass != "" {
			return m.doc.ElementByClass(m.watch.MapClass)
		}
		return nil, false
	})
}

// libraryRoot resolves the mapping library's root element.
func (m *StyleManager) libraryRoot() (dom.Element, bool) {
	return m.state.CachedElement(cacheLeafletMap, func() (dom.Element, bool) {
		return m.doc.ElementByClass(m.watch.LibraryRootClass)
	})
}

// fitViewport resolves the library instance and applies the viewport
// adjustments, capturing the original state exactly once per session.
// Resolution failure degrades to CSS-only layout.
func (m *StyleManager) fitViewport(anchor dom.Element) {
	target := anchor
	if root, ok := m.libraryRoot(); ok {
		target = root
	}

	inst, ok := m.resolver.Resolve(target)
	if !ok {
		return
	}

	if m.state.Original == nil {
		vp := m.adapter.Capture(inst)
		vp.MapHeight = anchor.InlineHeight()
		m.state.Original = vp
	}

	m.adapter.Fit(inst)
}

// restoreViewport undoes the viewport adjustments from the captured
// snapshot, including the container's original inline height.
func (m *StyleManager) restoreViewport(vp maps.Viewport) {
	if anchor, ok := m.anchor(); ok {
		if err := anchor.SetInlineHeight(vp.MapHeight); err != nil {
			m.logger.Warnf("restoring container height failed: %v", err)
		}
	}

	target, ok := m.libraryRoot()
	if !ok {
		if target, ok = m.anchor(); !ok {
			m.logger.Warnf("viewport restore skipped: no element to resolve against")
			return
		}
	}

	inst, ok := m.resolver.Resolve(target)
	if !ok {
		m.logger.Warnf("viewport restore skipped: instance unresolved")
		return
	}

	m.adapter.Restore(inst, vp)
}

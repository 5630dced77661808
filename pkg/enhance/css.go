package enhance

import (
	"fmt"
	"strings"

	"github.com/fieldnote/obsmap/pkg/config"
)

const (
	// StylesheetID is the reserved identifier of the singleton stylesheet.
	// At most one node with this id ever exists in the document.
	StylesheetID = "obsmap-full-height-style"

	// BodyMarkerClass scopes the injected rules: they only take effect
	// while the document body carries this marker, so removal never has to
	// fight specificity elsewhere.
	BodyMarkerClass = "obsmap-full-map"
)

// BuildStylesheet composes the overlay CSS from the layout configuration.
// The scheme uses fixed pixel offsets: the map is pinned to the viewport
// between the reserved header and footer heights, and the observation panel
// becomes a fixed-width floating column on the right.
func BuildStylesheet(layout config.LayoutConfig, watch config.WatchConfig) string {
	mapSel := selectorFor(watch.MapID, watch.MapClass)
	panelSel := selectorFor(watch.PanelID, "")

	var b strings.Builder

	fmt.Fprintf(&b, `.%[1]s %[2]s {
  position: fixed !important;
  top: %[3]dpx;
  bottom: %[4]dpx;
  left: 0;
  right: 0;
  width: 100%% !important;
  height: auto !important;
  max-height: none !important;
  z-index: 1;
}
`, BodyMarkerClass, mapSel, layout.HeaderHeight, layout.FooterHeight)

	if panelSel != "" {
		fmt.Fprintf(&b, `.%[1]s %[2]s {
  position: fixed !important;
  top: %[3]dpx;
  bottom: %[4]dpx;
  right: %[5]dpx;
  width: %[6]dpx !important;
  overflow-y: auto;
  z-index: 2;
}
`, BodyMarkerClass, panelSel,
			layout.HeaderHeight+layout.PanelSpacing,
			layout.FooterHeight+layout.PanelSpacing,
			layout.PanelSpacing,
			layout.PanelWidth)
	}

	fmt.Fprintf(&b, `.%[1]s {
  overflow: hidden;
}
`, BodyMarkerClass)

	return b.String()
}

// selectorFor prefers the id selector and falls back to the class.
func selectorFor(id, class string) string {
	if id != "" {
		return "#" + id
	}
	if class != "" {
		return "." + class
	}
	return ""
}

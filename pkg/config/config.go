// Package config holds the runtime configuration for the obsmap driver and
// the persisted user preference store.
//
// Configuration comes in two layers. The runtime Config (site, layout, map,
// watch, and bridge settings) is loaded once at startup from a YAML file with
// OBSMAP_* environment overrides and is read-only afterwards. The preference
// store (prefs.go) is a small persisted key-value file that mirrors the one
// user-facing toggle and can change at any time through the message bridge.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Config is the full runtime configuration for a driver session.
type Config struct {
	Site   SiteConfig   `koanf:"site" yaml:"site"`
	Layout LayoutConfig `koanf:"layout" yaml:"layout"`
	Map    MapConfig    `koanf:"map" yaml:"map"`
	Watch  WatchConfig  `koanf:"watch" yaml:"watch"`
	Bridge BridgeConfig `koanf:"bridge" yaml:"bridge"`
}

// SiteConfig identifies the host site and the pages eligible for enhancement.
type SiteConfig struct {
	// BaseURL is the site the driver navigates to on startup.
	BaseURL string `koanf:"base_url" yaml:"base_url"`

	// ListingPaths are the URL paths (glob patterns) eligible for the
	// full-height map layout. Deeper paths never match.
	ListingPaths []string `koanf:"listing_paths" yaml:"listing_paths"`
}

// LayoutConfig parameterizes the injected stylesheet. All offsets are fixed
// pixel values; the map column takes the remaining viewport height below the
// header and above the footer, and the observation panel is repositioned as a
// fixed-width overlay column.
type LayoutConfig struct {
	// HeaderHeight is the reserved page header height in pixels.
	HeaderHeight int `koanf:"header_height" yaml:"header_height"`

	// FooterHeight is the reserved page footer height in pixels.
	FooterHeight int `koanf:"footer_height" yaml:"footer_height"`

	// PanelWidth is the repositioned observation panel width in pixels.
	PanelWidth int `koanf:"panel_width" yaml:"panel_width"`

	// PanelSpacing is the gap between the panel and the viewport edge in pixels.
	PanelSpacing int `koanf:"panel_spacing" yaml:"panel_spacing"`
}

// MapConfig parameterizes the viewport adjustments applied to the map library.
type MapConfig struct {
	// ZoomFloor is the lowest zoom the fit step will ever set.
	ZoomFloor float64 `koanf:"zoom_floor" yaml:"zoom_floor"`

	// ZoomStep is how much the fit step zooms out when above the floor.
	ZoomStep float64 `koanf:"zoom_step" yaml:"zoom_step"`

	// MinZoom is the minimum zoom enforced on the instance, preventing
	// horizontal world repetition at full height.
	MinZoom float64 `koanf:"min_zoom" yaml:"min_zoom"`
}

// WatchConfig parameterizes the mutation watcher.
type WatchConfig struct {
	// ContainerSelector is the bounded ancestor the watcher observes.
	ContainerSelector string `koanf:"container_selector" yaml:"container_selector"`

	// MapID is the map container element id.
	MapID string `koanf:"map_id" yaml:"map_id"`

	// MapClass is the map container class name.
	MapClass string `koanf:"map_class" yaml:"map_class"`

	// LibraryRootClass is the mapping library's root element class name.
	LibraryRootClass string `koanf:"library_root_class" yaml:"library_root_class"`

	// PanelID is the observation panel element id.
	PanelID string `koanf:"panel_id" yaml:"panel_id"`

	// DebounceMillis is the trailing-edge debounce window in milliseconds.
	DebounceMillis int `koanf:"debounce_millis" yaml:"debounce_millis"`
}

// BridgeConfig parameterizes the message bridge server.
type BridgeConfig struct {
	// ListenAddr is the address the bridge HTTP server binds to.
	ListenAddr string `koanf:"listen_addr" yaml:"listen_addr"`
}

// Default returns the configuration for the stock observations listing page.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:      "https://www.inaturalist.org",
			ListingPaths: []string{"/observations"},
		},
		Layout: LayoutConfig{
			HeaderHeight: 54,
			FooterHeight: 0,
			PanelWidth:   380,
			PanelSpacing: 10,
		},
		Map: MapConfig{
			ZoomFloor: 2.0,
			ZoomStep:  0.5,
			MinZoom:   2.0,
		},
		Watch: WatchConfig{
			ContainerSelector: "#app",
			MapID:             "map",
			MapClass:          "observations-map",
			LibraryRootClass:  "leaflet-container",
			PanelID:           "obs-panel",
			DebounceMillis:    300,
		},
		Bridge: BridgeConfig{
			ListenAddr: "127.0.0.1:7343",
		},
	}
}

// DefaultPath returns the default config file location, ~/.obsmap/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".obsmap", "config.yaml"), nil
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (OBSMAP_*). An empty path resolves to
// DefaultPath. A missing file is not an error; defaults are used.
func Load(path string) (*Config, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	k := koanf.New(".")

	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: OBSMAP_LAYOUT.PANEL_WIDTH -> layout.panel_width, etc.
	if err := k.Load(env.Provider("OBSMAP_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "OBSMAP_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url is required")
	}
	if len(c.Site.ListingPaths) == 0 {
		return fmt.Errorf("site.listing_paths must not be empty")
	}
	if c.Layout.HeaderHeight < 0 || c.Layout.FooterHeight < 0 {
		return fmt.Errorf("layout offsets must not be negative")
	}
	if c.Layout.PanelWidth <= 0 {
		return fmt.Errorf("layout.panel_width must be positive")
	}
	if c.Map.ZoomStep <= 0 {
		return fmt.Errorf("map.zoom_step must be positive")
	}
	if c.Map.ZoomFloor < 0 || c.Map.MinZoom < 0 {
		return fmt.Errorf("map zoom levels must not be negative")
	}
	if c.Watch.DebounceMillis <= 0 {
		return fmt.Errorf("watch.debounce_millis must be positive")
	}
	if c.Watch.MapID == "" && c.Watch.MapClass == "" && c.Watch.LibraryRootClass == "" {
		return fmt.Errorf("watch requires at least one of map_id, map_class, library_root_class")
	}
	return nil
}

// Package theme applies and persists the console's visual preferences.
// It is independent of the chat stack: themes are named CSS variable sets
// served as a stylesheet, zoom is a bounded scale factor.
package theme

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/nimbusops/console/internal/state"
)

var (
	// ErrUnknownTheme is returned for a theme name with no variable set.
	ErrUnknownTheme = errors.New("unknown theme")

	// ErrZoomOutOfRange is returned when the zoom factor leaves its bounds.
	ErrZoomOutOfRange = errors.New("zoom out of range")
)

// Zoom bounds and default.
const (
	MinZoom     = 0.5
	MaxZoom     = 2.0
	DefaultZoom = 1.0
)

// DefaultTheme is applied when no preference is stored.
const DefaultTheme = "dark"

// Theme is one named CSS variable set.
type Theme struct {
	Name string
	Vars map[string]string
}

var themes = map[string]Theme{
	"dark": {
		Name: "dark",
		Vars: map[string]string{
			"--bg":       "#0f1419",
			"--bg-panel": "#1a2129",
			"--fg":       "#e6e1cf",
			"--fg-muted": "#8a919b",
			"--accent":   "#36a3d9",
			"--border":   "#2d3640",
			"--critical": "#f07178",
			"--warning":  "#ffb454",
			"--ok":       "#b8cc52",
			"--code-bg":  "#14191f",
		},
	},
	"light": {
		Name: "light",
		Vars: map[string]string{
			"--bg":       "#fafafa",
			"--bg-panel": "#ffffff",
			"--fg":       "#24292f",
			"--fg-muted": "#57606a",
			"--accent":   "#0969da",
			"--border":   "#d0d7de",
			"--critical": "#cf222e",
			"--warning":  "#9a6700",
			"--ok":       "#1a7f37",
			"--code-bg":  "#f6f8fa",
		},
	},
	"high-contrast": {
		Name: "high-contrast",
		Vars: map[string]string{
			"--bg":       "#000000",
			"--bg-panel": "#0a0a0a",
			"--fg":       "#ffffff",
			"--fg-muted": "#d0d0d0",
			"--accent":   "#58a6ff",
			"--border":   "#f0f0f0",
			"--critical": "#ff6a69",
			"--warning":  "#f0b72f",
			"--ok":       "#4ae168",
			"--code-bg":  "#101010",
		},
	},
}

// Names returns the available theme names, sorted.
func Names() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Manager reads and writes theme/zoom preferences through the state store.
type Manager struct {
	state  *state.Store
	logger *slog.Logger
}

// NewManager creates a Manager. logger may be nil.
func NewManager(st *state.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{state: st, logger: logger}
}

// Current returns the active theme and zoom, falling back to defaults for
// missing or invalid stored values.
func (m *Manager) Current() (Theme, float64) {
	name := m.state.Get(state.KeyTheme)
	th, ok := themes[name]
	if !ok {
		th = themes[DefaultTheme]
	}

	zoom := DefaultZoom
	if raw := m.state.Get(state.KeyZoom); raw != "" {
		if z, err := strconv.ParseFloat(raw, 64); err == nil && z >= MinZoom && z <= MaxZoom {
			zoom = z
		}
	}
	return th, zoom
}

// SetTheme persists the theme preference.
func (m *Manager) SetTheme(name string) error {
	if _, ok := themes[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	m.logger.Debug("theme changed", "theme", name)
	return m.state.Set(state.KeyTheme, name)
}

// SetZoom persists the zoom factor.
func (m *Manager) SetZoom(zoom float64) error {
	if zoom < MinZoom || zoom > MaxZoom {
		return fmt.Errorf("%w: %.2f not in [%.1f, %.1f]", ErrZoomOutOfRange, zoom, MinZoom, MaxZoom)
	}
	m.logger.Debug("zoom changed", "zoom", zoom)
	return m.state.Set(state.KeyZoom, strconv.FormatFloat(zoom, 'f', 2, 64))
}

// CSS renders the active preference as a stylesheet: the theme's variables
// on :root plus the zoom factor. Variables are emitted sorted so output is
// stable for caching and tests.
func (m *Manager) CSS() string {
	th, zoom := m.Current()

	keys := make([]string, 0, len(th.Vars))
	for k := range th.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %s;\n", k, th.Vars[k])
	}
	b.WriteString("}\n")
	fmt.Fprintf(&b, "html { font-size: %.0f%%; }\n", zoom*100)
	return b.String()
}

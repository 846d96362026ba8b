package theme

import (
	"errors"
	"strings"
	"testing"

	"github.com/nimbusops/console/internal/state"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	st, err := state.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewManager(st, nil)
}

func TestManager_Defaults(t *testing.T) {
	t.Parallel()

	m := testManager(t)
	th, zoom := m.Current()
	if th.Name != DefaultTheme {
		t.Errorf("theme = %q, want %q", th.Name, DefaultTheme)
	}
	if zoom != DefaultZoom {
		t.Errorf("zoom = %v, want %v", zoom, DefaultZoom)
	}
}

func TestManager_SetAndPersist(t *testing.T) {
	t.Parallel()

	m := testManager(t)
	if err := m.SetTheme("light"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetZoom(1.25); err != nil {
		t.Fatal(err)
	}

	th, zoom := m.Current()
	if th.Name != "light" {
		t.Errorf("theme = %q, want light", th.Name)
	}
	if zoom != 1.25 {
		t.Errorf("zoom = %v, want 1.25", zoom)
	}
}

func TestManager_Validation(t *testing.T) {
	t.Parallel()

	m := testManager(t)
	if err := m.SetTheme("solarized"); !errors.Is(err, ErrUnknownTheme) {
		t.Errorf("err = %v, want ErrUnknownTheme", err)
	}
	if err := m.SetZoom(3.0); !errors.Is(err, ErrZoomOutOfRange) {
		t.Errorf("err = %v, want ErrZoomOutOfRange", err)
	}
	if err := m.SetZoom(0.1); !errors.Is(err, ErrZoomOutOfRange) {
		t.Errorf("err = %v, want ErrZoomOutOfRange", err)
	}
}

func TestManager_CSS(t *testing.T) {
	t.Parallel()

	m := testManager(t)
	if err := m.SetTheme("high-contrast"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetZoom(1.5); err != nil {
		t.Fatal(err)
	}

	css := m.CSS()
	if !strings.Contains(css, "--bg: #000000;") {
		t.Errorf("css missing theme variable:\n%s", css)
	}
	if !strings.Contains(css, "font-size: 150%;") {
		t.Errorf("css missing zoom:\n%s", css)
	}
	// Stable output: variables sorted.
	if strings.Index(css, "--accent") > strings.Index(css, "--bg:") {
		t.Error("variables not sorted")
	}
}

func TestNames(t *testing.T) {
	t.Parallel()

	names := Names()
	if len(names) != 3 {
		t.Fatalf("names = %v, want 3 themes", names)
	}
	if names[0] != "dark" || names[1] != "high-contrast" || names[2] != "light" {
		t.Errorf("names = %v, want sorted", names)
	}
}

package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nimbusops/console/internal/theme"
)

// zoomStep is one click of the zoom in/out buttons.
const zoomStep = 0.25

// Prefs handles theme and zoom changes. Both redirect back to the page the
// form was submitted from so no-JS clients keep working.
type Prefs struct {
	logger *slog.Logger
	theme  *theme.Manager
}

// NewPrefs creates a Prefs handler. logger is required.
func NewPrefs(logger *slog.Logger, tm *theme.Manager) *Prefs {
	if logger == nil {
		panic("NewPrefs: logger is required")
	}
	return &Prefs{logger: logger, theme: tm}
}

// RegisterRoutes registers the preference routes on the given mux.
func (h *Prefs) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /prefs/theme", h.SetTheme)
	mux.HandleFunc("POST /prefs/zoom", h.SetZoom)
}

// SetTheme switches the named theme.
func (h *Prefs) SetTheme(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("theme")
	if err := h.theme.SetTheme(name); err != nil {
		h.logger.Warn("rejected theme change", "theme", name, "error", err)
		http.Error(w, "unknown theme", http.StatusBadRequest)
		return
	}
	h.redirectBack(w, r)
}

// SetZoom steps or sets the zoom factor. Out-of-range steps clamp at the
// bound instead of failing.
func (h *Prefs) SetZoom(w http.ResponseWriter, r *http.Request) {
	zoom, err := strconv.ParseFloat(r.FormValue("zoom"), 64)
	if err != nil {
		http.Error(w, "invalid zoom value", http.StatusBadRequest)
		return
	}

	switch r.FormValue("step") {
	case "in":
		zoom += zoomStep
	case "out":
		zoom -= zoomStep
	}
	if zoom < theme.MinZoom {
		zoom = theme.MinZoom
	}
	if zoom > theme.MaxZoom {
		zoom = theme.MaxZoom
	}

	if err := h.theme.SetZoom(zoom); err != nil {
		h.logger.Warn("rejected zoom change", "zoom", zoom, "error", err)
		http.Error(w, "invalid zoom value", http.StatusBadRequest)
		return
	}
	h.redirectBack(w, r)
}

// redirectBack returns to the referring page, or the home page when the
// referer is missing. Only the local path is used, never a foreign origin.
func (h *Prefs) redirectBack(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if ref, err := url.Parse(r.Header.Get("Referer")); err == nil && ref.Path != "" {
		target = ref.Path
		if ref.RawQuery != "" {
			target += "?" + ref.RawQuery
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

package handlers

import (
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/nimbusops/console/internal/artifact"
	"github.com/nimbusops/console/internal/render"
)

// Artifacts handles the artifact canvas: activation, pinning, export and
// the panel partial the stream swaps in.
type Artifacts struct {
	logger   *slog.Logger
	store    *artifact.Store
	markdown *render.Markdown
}

// NewArtifacts creates an Artifacts handler. logger is required.
func NewArtifacts(logger *slog.Logger, store *artifact.Store, markdown *render.Markdown) *Artifacts {
	if logger == nil {
		panic("NewArtifacts: logger is required")
	}
	return &Artifacts{logger: logger, store: store, markdown: markdown}
}

// RegisterRoutes registers the artifact routes on the given mux.
func (h *Artifacts) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /artifacts", h.Panel)
	mux.HandleFunc("POST /artifacts/clear", h.Clear)
	mux.HandleFunc("POST /artifacts/{id}/activate", h.Activate)
	mux.HandleFunc("POST /artifacts/{id}/pin", h.Pin)
	mux.HandleFunc("POST /artifacts/{id}/unpin", h.Unpin)
	mux.HandleFunc("GET /artifacts/{id}/export", h.Export)
}

// Panel renders the canvas partial for the current store state.
func (h *Artifacts) Panel(w http.ResponseWriter, r *http.Request) {
	comp := panelComponent(h.store, h.markdown, h.logger)
	if err := comp.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render artifact panel", "error", err)
	}
}

// Activate promotes an artifact to the large view and re-renders the panel.
func (h *Artifacts) Activate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.store.SetActive(id) {
		http.Error(w, "artifact not found", http.StatusNotFound)
		return
	}
	h.Panel(w, r)
}

// Pin adds the artifact to the pinned set.
func (h *Artifacts) Pin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.store.Get(id); !ok {
		http.Error(w, "artifact not found", http.StatusNotFound)
		return
	}
	h.store.Pin(id)
	h.Panel(w, r)
}

// Unpin removes the artifact from the pinned set.
func (h *Artifacts) Unpin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.store.Unpin(id)
	h.Panel(w, r)
}

// Clear empties the canvas. Pinned ids survive for the session.
func (h *Artifacts) Clear(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	h.Panel(w, r)
}

// Export downloads the artifact in its natural file format (tables as CSV,
// everything else per its type extension).
func (h *Artifacts) Export(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	a, ok := h.store.Get(id)
	if !ok {
		http.Error(w, "artifact not found", http.StatusNotFound)
		return
	}

	filename, data := artifact.Export(a, h.logger)

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		h.logger.Debug("artifact export interrupted", "id", id, "error", err)
	}
}

package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nimbusops/console/internal/platform"
	"github.com/nimbusops/console/internal/theme"
	"github.com/nimbusops/console/internal/web/component"
)

// Panels handles the panel query editor: validation and data preview.
type Panels struct {
	logger *slog.Logger
	client *platform.Client
	theme  *theme.Manager
}

// NewPanels creates a Panels handler. logger is required.
func NewPanels(logger *slog.Logger, client *platform.Client, tm *theme.Manager) *Panels {
	if logger == nil {
		panic("NewPanels: logger is required")
	}
	return &Panels{logger: logger, client: client, theme: tm}
}

// RegisterRoutes registers the panel editor routes on the given mux.
func (h *Panels) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /panels", h.Editor)
	mux.HandleFunc("POST /panels/test-query", h.TestQuery)
	mux.HandleFunc("POST /panels/preview", h.Preview)
}

// Editor renders the empty editor.
func (h *Panels) Editor(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, component.PanelEditorProps{})
}

// TestQuery validates the submitted expression against the backend and
// re-renders the editor with the verdict.
func (h *Panels) TestQuery(w http.ResponseWriter, r *http.Request) {
	query, ok := h.formQuery(w, r)
	if !ok {
		return
	}

	props := component.PanelEditorProps{Query: query}
	result, err := h.client.TestPanelQuery(r.Context(), query)
	if err != nil {
		h.logger.Error("panel query validation failed", "error", err)
		props.Error = "The backend could not validate the query. Please try again."
	} else {
		props.Result = &result
	}
	h.render(w, r, props)
}

// Preview fetches snapshot data for the expression and renders it
// pretty-printed under the editor.
func (h *Panels) Preview(w http.ResponseWriter, r *http.Request) {
	query, ok := h.formQuery(w, r)
	if !ok {
		return
	}

	props := component.PanelEditorProps{Query: query}
	data, err := h.client.SnapshotQueryData(r.Context(), query)
	if err != nil {
		h.logger.Error("panel preview failed", "error", err)
		props.Error = "The backend could not fetch preview data. Please try again."
	} else {
		props.Preview = prettyJSON(data)
	}
	h.render(w, r, props)
}

func (h *Panels) formQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return "", false
	}
	query := strings.TrimSpace(r.FormValue("query"))
	if query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return "", false
	}
	return query, true
}

func (h *Panels) render(w http.ResponseWriter, r *http.Request, props component.PanelEditorProps) {
	renderPage(w, r, h.logger, h.theme, "Panel Editor", "panels", component.PanelEditor(props))
}

// prettyJSON re-indents raw snapshot data for display. Invalid payloads are
// shown as-is.
func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

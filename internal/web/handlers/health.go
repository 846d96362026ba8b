package handlers

import (
	"log/slog"
	"net/http"
)

// Health serves liveness and readiness probes.
type Health struct {
	logger *slog.Logger
}

// NewHealth creates a Health handler. logger is required.
func NewHealth(logger *slog.Logger) *Health {
	if logger == nil {
		panic("NewHealth: logger is required")
	}
	return &Health{logger: logger}
}

// RegisterRoutes registers the probe routes on the given mux.
func (h *Health) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Healthz)
	mux.HandleFunc("GET /ready", h.Ready)
}

// Healthz reports process liveness.
func (h *Health) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte("ok")); err != nil {
		h.logger.Debug("failed to write health response", "error", err)
	}
}

// Ready reports readiness to serve. The console is stateless apart from its
// in-memory stores, so readiness follows liveness.
func (h *Health) Ready(w http.ResponseWriter, _ *http.Request) {
	h.Healthz(w, nil)
}

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nimbusops/console/internal/artifact"
	"github.com/nimbusops/console/internal/render"
	"github.com/nimbusops/console/internal/theme"
	"github.com/nimbusops/console/internal/web/component"
	"github.com/nimbusops/console/internal/widget"
)

// Pages serves the chat surface pages.
type Pages struct {
	logger      *slog.Logger
	theme       *theme.Manager
	controllers map[widget.Surface]*widget.Controller
	artifacts   *artifact.Store
	markdown    *render.Markdown
}

// NewPages creates a Pages handler. logger is required.
func NewPages(
	logger *slog.Logger,
	tm *theme.Manager,
	controllers map[widget.Surface]*widget.Controller,
	store *artifact.Store,
	markdown *render.Markdown,
) *Pages {
	if logger == nil {
		panic("NewPages: logger is required")
	}
	return &Pages{
		logger:      logger,
		theme:       tm,
		controllers: controllers,
		artifacts:   store,
		markdown:    markdown,
	}
}

// RegisterRoutes registers the page routes on the given mux.
func (h *Pages) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Inquiry)
	mux.HandleFunc("GET /troubleshoot", h.Troubleshoot)
	mux.HandleFunc("GET /grafana", h.Grafana)
}

// Inquiry is the primary chat page.
func (h *Pages) Inquiry(w http.ResponseWriter, r *http.Request) {
	h.chatPage(w, r, widget.SurfaceInquiry, "Inquiry")
}

// Troubleshoot is the in-app troubleshooting widget page.
func (h *Pages) Troubleshoot(w http.ResponseWriter, r *http.Request) {
	h.chatPage(w, r, widget.SurfaceTroubleshoot, "Troubleshoot")
}

// Grafana is the embedded-dashboard widget page.
func (h *Pages) Grafana(w http.ResponseWriter, r *http.Request) {
	h.chatPage(w, r, widget.SurfaceGrafana, "Grafana Widget")
}

func (h *Pages) chatPage(w http.ResponseWriter, r *http.Request, surface widget.Surface, title string) {
	props := component.ChatPageProps{
		Surface:   string(surface),
		Page:      r.URL.Query().Get("page"),
		Artifacts: panelComponent(h.artifacts, h.markdown, h.logger),
	}

	// A dead backend still gets a page; sending will surface the error.
	if ctrl, ok := h.controllers[surface]; ok {
		if err := ctrl.Init(r.Context()); err != nil {
			h.logger.Warn("surface unavailable", "surface", surface, "error", err)
		} else {
			props.SessionID = ctrl.SessionID()
			props.Providers = ctrl.Providers()
			props.ProviderID = ctrl.ProviderID()
			props.Messages = historyProps(ctrl, h.markdown)
		}
	}

	renderPage(w, r, h.logger, h.theme, title, string(surface), component.ChatPage(props))
}

// historyProps converts the session history for display. Assistant turns
// get markdown rendering; user turns stay plain text.
func historyProps(ctrl *widget.Controller, md *render.Markdown) []component.MessageProps {
	history := ctrl.History()
	out := make([]component.MessageProps, 0, len(history))
	for i, m := range history {
		p := component.MessageProps{
			ID:   fmt.Sprintf("hist-%d", i),
			Role: m.Role,
		}
		if m.Role == "assistant" {
			p.ContentHTML = md.Render(m.Content)
		} else {
			p.Content = m.Content
		}
		out = append(out, p)
	}
	return out
}

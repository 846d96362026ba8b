// Package handlers provides HTTP handlers for the console web interface.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/nimbusops/console/internal/artifact"
	"github.com/nimbusops/console/internal/marker"
	"github.com/nimbusops/console/internal/platform"
	"github.com/nimbusops/console/internal/render"
	"github.com/nimbusops/console/internal/web/component"
	"github.com/nimbusops/console/internal/web/sse"
	"github.com/nimbusops/console/internal/widget"
)

// SSEWriter is the streaming surface the chat handler writes to. The
// interface exists for handler tests; sse.Writer is the one production
// implementation.
type SSEWriter interface {
	WriteChunkRaw(ctx context.Context, msgID, htmlContent string) error
	WriteEvent(ctx context.Context, event string, comp templ.Component) error
	WriteArtifact(ctx context.Context, comp templ.Component) error
	WriteCanvasShow() error
	WriteSuggestions(ctx context.Context, comp templ.Component) error
	WriteDone(ctx context.Context, comp templ.Component) error
	WriteError(code, message string) error
}

// SSETimeout bounds one streaming connection so abandoned browser tabs
// cannot pin goroutines forever.
const SSETimeout = 5 * time.Minute

// ChatConfig contains configuration for the Chat handler.
type ChatConfig struct {
	Logger      *slog.Logger
	Controllers map[widget.Surface]*widget.Controller
	Artifacts   *artifact.Store
	Markdown    *render.Markdown
	SSEWriterFn func(w http.ResponseWriter) (SSEWriter, error) // nil uses sse.NewWriter
}

// Chat handles chat send and stream requests for all three surfaces.
type Chat struct {
	logger      *slog.Logger
	controllers map[widget.Surface]*widget.Controller
	artifacts   *artifact.Store
	markdown    *render.Markdown
	sseWriterFn func(w http.ResponseWriter) (SSEWriter, error)
}

func defaultSSEWriterFn(w http.ResponseWriter) (SSEWriter, error) {
	return sse.NewWriter(w)
}

// NewChat creates a Chat handler. logger is required (panics if nil).
func NewChat(cfg ChatConfig) *Chat {
	if cfg.Logger == nil {
		panic("NewChat: logger is required")
	}
	fn := cfg.SSEWriterFn
	if fn == nil {
		fn = defaultSSEWriterFn
	}
	return &Chat{
		logger:      cfg.Logger,
		controllers: cfg.Controllers,
		artifacts:   cfg.Artifacts,
		markdown:    cfg.Markdown,
		sseWriterFn: fn,
	}
}

// RegisterRoutes registers the chat routes on the given mux.
func (h *Chat) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /chat/send", h.Send)
	mux.HandleFunc("GET /chat/stream", h.Stream)
	mux.HandleFunc("POST /chat/stop", h.Stop)
	mux.HandleFunc("GET /chat/new", h.NewChat)
	mux.HandleFunc("POST /chat/provider", h.SetProvider)
}

// controller resolves and lazily initializes the controller for a surface.
func (h *Chat) controller(ctx context.Context, raw string) (*widget.Controller, error) {
	surface := widget.Surface(raw)
	if raw == "" {
		surface = widget.SurfaceInquiry
	}
	ctrl, ok := h.controllers[surface]
	if !ok {
		return nil, fmt.Errorf("unknown surface %q", raw)
	}
	if err := ctrl.Init(ctx); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// Send handles the chat form submission: it echoes the user bubble and the
// assistant stream shell; the browser then opens /chat/stream for the
// actual response.
func (h *Chat) Send(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Error("failed to parse form", "error", err)
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	query := strings.TrimSpace(r.FormValue("query"))
	if query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	surface := r.FormValue("surface")
	page := r.FormValue("page")

	if _, err := h.controller(r.Context(), surface); err != nil {
		h.logger.Error("controller unavailable", "surface", surface, "error", err)
		http.Error(w, "chat unavailable", http.StatusBadGateway)
		return
	}

	msgID := fmt.Sprintf("%d", time.Now().UnixNano())

	userMsg := component.MessageBubble(component.MessageProps{
		ID:      msgID + "-q",
		Role:    "user",
		Content: query,
	})
	if err := userMsg.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render user message", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	shell := component.StreamShell(msgID, surface, query, page)
	if err := shell.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render assistant shell", "error", err)
	}
}

// Stream handles GET /chat/stream?msgId=X&surface=Y&query=Z (SSE endpoint).
// Each assistant message opens its own stream.
func (h *Chat) Stream(w http.ResponseWriter, r *http.Request) {
	msgID := r.URL.Query().Get("msgId")
	query := r.URL.Query().Get("query")
	if msgID == "" || query == "" {
		http.Error(w, "missing parameters", http.StatusBadRequest)
		return
	}
	surface := r.URL.Query().Get("surface")
	page := r.URL.Query().Get("page")

	sw, err := h.sseWriterFn(w)
	if err != nil {
		h.logger.Error("SSE not supported", "error", err)
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), SSETimeout)
	defer cancel()

	ctrl, err := h.controller(ctx, surface)
	if err != nil {
		h.logger.Error("controller unavailable", "surface", surface, "error", err)
		h.writeSinkError(sw, "backend_unavailable", "The platform backend is unreachable. Please try again.")
		return
	}

	sink := &relaySink{
		ctx:       ctx,
		w:         sw,
		logger:    h.logger,
		markdown:  h.markdown,
		artifacts: h.artifacts,
		msgID:     msgID,
	}

	if err := ctrl.Send(ctx, query, page, sink); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			h.logger.Info("stream superseded or stopped", "msgId", msgID)
		case errors.Is(err, context.DeadlineExceeded):
			h.logger.Warn("SSE connection timeout", "msgId", msgID, "timeout", SSETimeout)
		default:
			code, message := classifyError(err)
			h.logger.Error("stream failed", "error", err, "msgId", msgID)
			h.writeSinkError(sw, code, message)
		}
		return
	}

	sink.finish()
}

// Stop cancels the in-flight stream on a surface.
func (h *Chat) Stop(w http.ResponseWriter, r *http.Request) {
	surface := widget.Surface(r.FormValue("surface"))
	if surface == "" {
		surface = widget.SurfaceInquiry
	}
	if ctrl, ok := h.controllers[surface]; ok {
		ctrl.Stop()
	}
	w.WriteHeader(http.StatusNoContent)
}

// NewChat resets the surface to a fresh session and redirects to its page.
func (h *Chat) NewChat(w http.ResponseWriter, r *http.Request) {
	surface := r.URL.Query().Get("surface")
	ctrl, err := h.controller(r.Context(), surface)
	if err == nil {
		err = ctrl.Reset(r.Context())
	}
	if err != nil {
		h.logger.Error("new chat failed", "surface", surface, "error", err)
		http.Error(w, "could not start a new chat", http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, surfacePath(widget.Surface(surface)), http.StatusSeeOther)
}

// SetProvider switches the session's model provider and returns to the page.
func (h *Chat) SetProvider(w http.ResponseWriter, r *http.Request) {
	surface := r.URL.Query().Get("surface")
	providerID := r.FormValue("provider_id")
	if providerID == "" {
		http.Error(w, "provider_id is required", http.StatusBadRequest)
		return
	}

	ctrl, err := h.controller(r.Context(), surface)
	if err == nil {
		err = ctrl.SetProvider(r.Context(), providerID)
	}
	if err != nil {
		h.logger.Error("provider switch failed", "surface", surface, "error", err)
		http.Error(w, "could not switch provider", http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, surfacePath(widget.Surface(surface)), http.StatusSeeOther)
}

// surfacePath maps a surface to its page path.
func surfacePath(s widget.Surface) string {
	switch s {
	case widget.SurfaceTroubleshoot:
		return "/troubleshoot"
	case widget.SurfaceGrafana:
		return "/grafana"
	default:
		return "/"
	}
}

// writeSinkError writes an SSE error event, tolerating gone clients.
func (h *Chat) writeSinkError(w SSEWriter, code, message string) {
	if err := w.WriteError(code, message); err != nil {
		h.logger.Debug("failed to write error event (client may have disconnected)", "error", err)
	}
}

// classifyError maps a stream failure to an error code and user message.
func classifyError(err error) (code, message string) {
	switch {
	case errors.Is(err, platform.ErrBackendStatus):
		return "backend_status", "The platform backend rejected the request. Please try again."
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout", "Request timed out. Please try again."
	default:
		return "stream_error", "Failed to generate a response. Please try again."
	}
}

// relaySink bridges the widget stream into SSE events: rendered residual
// text as OOB chunk swaps, artifacts into the canvas, cards and chips into
// the message extras slot.
type relaySink struct {
	ctx       context.Context
	w         SSEWriter
	logger    *slog.Logger
	markdown  *render.Markdown
	artifacts *artifact.Store
	msgID     string

	canvasShown bool
	finalSent   bool
}

var _ widget.Sink = (*relaySink)(nil)

// RenderText replaces the streaming message body with the rendered residual.
func (s *relaySink) RenderText(residual string) error {
	return s.w.WriteChunkRaw(s.ctx, s.msgID, s.markdown.Render(residual))
}

// Artifact stores a completed artifact and pushes it into the canvas.
func (s *relaySink) Artifact(p marker.ArtifactPayload) error {
	a := &artifact.Artifact{
		ID:         p.ID,
		Type:       artifact.ParseType(p.Type),
		Title:      p.Title,
		Content:    p.Content,
		RawContent: p.Content,
	}
	if err := s.artifacts.Add(a); err != nil {
		// Duplicate declares happen when backends re-announce; not fatal.
		s.logger.Debug("artifact not added", "id", p.ID, "error", err)
		return nil
	}

	if !s.canvasShown {
		if err := s.w.WriteCanvasShow(); err != nil {
			s.logger.Warn("canvas show failed", "error", err)
		}
		s.canvasShown = true
	}

	return s.w.WriteArtifact(s.ctx, panelComponent(s.artifacts, s.markdown, s.logger))
}

// CommandCard appends a command card under the streaming message.
func (s *relaySink) CommandCard(c marker.CmdCard) error {
	return s.writeExtra(component.CommandCard(c))
}

// Suggestions sends the follow-up chips.
func (s *relaySink) Suggestions(items []string) error {
	return s.w.WriteSuggestions(s.ctx, component.SuggestionChips(items))
}

// Event surfaces progress/reasoning notes under the streaming message.
// File-open and changeset markers have no console surface and are logged.
func (s *relaySink) Event(kind marker.Kind, payload string) {
	switch kind {
	case marker.KindProgress, marker.KindReasoning:
		if err := s.writeExtra(component.ProgressNote(kind, payload)); err != nil {
			s.logger.Debug("dropping progress note", "error", err)
		}
	default:
		s.logger.Debug("stream event without console surface", "kind", kind, "payload_len", len(payload))
	}
}

// Final replaces the streaming message body with the definitive rendering.
// The done event itself comes from finish or StreamError, so an error that
// follows the terminal extraction pass still reaches the page before the
// client tears the stream down.
func (s *relaySink) Final(residual string) error {
	return s.w.WriteChunkRaw(s.ctx, s.msgID, s.markdown.Render(residual))
}

// ToolsUsed appends the tools footnote.
func (s *relaySink) ToolsUsed(names []string) error {
	return s.writeExtra(component.ToolsNote(names))
}

// StreamError appends a backend-reported error bubble under the message.
// It closes the stream itself, so finish() skips the empty done event.
func (s *relaySink) StreamError(msg string) error {
	if msg == "" {
		msg = "The response stream failed."
	}
	s.finalSent = true
	return s.w.WriteEvent(s.ctx, "done", s.oobAppend(component.ErrorBubble(s.msgID, msg)))
}

// finish closes out streams that ended without a final snapshot, so the
// client's stream teardown always fires.
func (s *relaySink) finish() {
	if s.finalSent {
		return
	}
	if err := s.w.WriteDone(s.ctx, templ.Raw("")); err != nil {
		s.logger.Debug("failed to close stream", "error", err)
	}
}

// writeExtra appends a component to the message extras slot via OOB swap.
func (s *relaySink) writeExtra(comp templ.Component) error {
	return s.w.WriteEvent(s.ctx, "chunk", s.oobAppend(comp))
}

// oobAppend wraps a component so the client appends it to the message
// extras slot.
func (s *relaySink) oobAppend(comp templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div id="msg-extras-%s" hx-swap-oob="beforeend">`, templ.EscapeString(s.msgID)); err != nil {
			return err
		}
		if err := comp.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// panelComponent snapshots the store into a full artifact panel component.
func panelComponent(store *artifact.Store, md *render.Markdown, logger *slog.Logger) templ.Component {
	props := component.ArtifactPanelProps{
		All:    store.List(),
		Pinned: store.Pinned(),
	}
	if active, ok := store.Active(); ok {
		props.Active = active
		switch active.Type {
		case artifact.TypeMarkdown:
			props.ActiveHTML = md.Render(active.Content)
		case artifact.TypeChart:
			if chart, ok := artifact.ExtractChart(active.Content, logger); ok {
				if b, err := json.Marshal(chart); err == nil {
					props.ChartPayload = string(b)
				}
			}
		}
	}
	return component.ArtifactPanel(props)
}

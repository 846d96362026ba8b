// Package widget holds the per-view chat session controllers.
//
// A Controller owns the conversational state of one surface (the inquiry
// page, the troubleshooting widget, or the Grafana-embedded widget): which
// backend session it talks to, the provider list, loaded history, and the
// at-most-one in-flight response stream. Lifecycle is explicit:
// init → active → disposed. All state lives on the controller; there are
// no package-level variables.
package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/nimbusops/console/internal/marker"
	"github.com/nimbusops/console/internal/platform"
	"github.com/nimbusops/console/internal/state"
	"github.com/nimbusops/console/internal/stream"
)

// Surface identifies which view a controller serves.
type Surface string

const (
	SurfaceInquiry      Surface = "inquiry"
	SurfaceTroubleshoot Surface = "troubleshoot"
	SurfaceGrafana      Surface = "grafana"
)

// sessionKey is the persisted-state key caching this surface's session id.
func (s Surface) sessionKey() string {
	switch s {
	case SurfaceTroubleshoot:
		return state.KeyTroubleshootSession
	case SurfaceGrafana:
		return state.KeyReviveGrafanaSession
	default:
		return state.KeyInquirySession
	}
}

// sessionType is the session type passed to the backend on creation.
func (s Surface) sessionType() string {
	if s == SurfaceGrafana {
		return "revive"
	}
	return string(s)
}

// Phase is the controller lifecycle state.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseActive
	PhaseDisposed
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseActive:
		return "active"
	case PhaseDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

var (
	// ErrNotActive is returned when a controller is used before Init or in
	// the wrong phase.
	ErrNotActive = errors.New("widget controller not active")

	// ErrDisposed is returned for any use after Dispose.
	ErrDisposed = errors.New("widget controller disposed")
)

// Sink extends the stream sink with events that exist at the transport
// level rather than in message text: backend tool reports and stream-level
// errors rendered inline in the conversation.
type Sink interface {
	stream.Sink
	ToolsUsed(names []string) error
	StreamError(msg string) error
}

// Controller drives one chat surface.
type Controller struct {
	surface Surface
	client  *platform.Client
	prefs   *state.Store
	logger  *slog.Logger

	mu        sync.Mutex
	phase     Phase
	session   platform.Session
	providers []platform.Provider
	history   []platform.Message
	cancel    context.CancelFunc // active stream, nil when idle
}

// New creates a controller in the init phase. logger may be nil.
func New(surface Surface, client *platform.Client, prefs *state.Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		surface: surface,
		client:  client,
		prefs:   prefs,
		logger:  logger.With("widget", string(surface)),
		phase:   PhaseInit,
	}
}

// Init resolves or creates the backend session and loads providers and
// history. The cached session id is reused when the backend still knows it;
// a stale id falls through to session creation. Provider and history load
// failures are logged but not fatal: the surface can still chat.
func (c *Controller) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case PhaseDisposed:
		return ErrDisposed
	case PhaseActive:
		return nil // idempotent
	}

	sess, err := c.resolveSession(ctx)
	if err != nil {
		return err
	}
	c.session = sess

	if providers, err := c.client.ListProviders(ctx); err != nil {
		c.logger.Warn("loading providers failed", "error", err)
	} else {
		c.providers = providers
	}

	if history, err := c.client.Messages(ctx, sess.ID); err != nil {
		c.logger.Warn("loading history failed", "session_id", sess.ID, "error", err)
	} else {
		c.history = history
	}

	c.phase = PhaseActive
	c.logger.Debug("widget initialized", "session_id", sess.ID, "history", len(c.history))
	return nil
}

// resolveSession returns the cached session if the backend still has it,
// otherwise creates a new one and caches its id. Caller holds c.mu.
func (c *Controller) resolveSession(ctx context.Context) (platform.Session, error) {
	key := c.surface.sessionKey()

	if cached := c.prefs.Get(key); cached != "" {
		sess, err := c.client.GetSession(ctx, cached)
		if err == nil {
			return sess, nil
		}
		c.logger.Debug("cached session unusable, creating new", "session_id", cached, "error", err)
	}

	sess, err := c.client.CreateSession(ctx, c.surface.sessionType())
	if err != nil {
		return platform.Session{}, fmt.Errorf("creating %s session: %w", c.surface, err)
	}
	if err := c.prefs.Set(key, sess.ID); err != nil {
		c.logger.Warn("caching session id failed", "error", err)
	}
	return sess, nil
}

// Reset discards the cached session and starts a fresh one ("new chat").
// Any in-flight stream is aborted first.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseDisposed {
		return ErrDisposed
	}
	c.stopLocked()

	if err := c.prefs.Set(c.surface.sessionKey(), ""); err != nil {
		c.logger.Warn("clearing cached session id failed", "error", err)
	}
	c.session = platform.Session{}
	c.history = nil

	sess, err := c.resolveSession(ctx)
	if err != nil {
		return err
	}
	c.session = sess
	c.phase = PhaseActive
	return nil
}

// SetProvider switches the session's model provider.
func (c *Controller) SetProvider(ctx context.Context, providerID string) error {
	c.mu.Lock()
	if c.phase != PhaseActive {
		c.mu.Unlock()
		return c.phaseError()
	}
	id := c.session.ID
	c.mu.Unlock()

	if err := c.client.SetSessionProvider(ctx, id, providerID); err != nil {
		return err
	}

	c.mu.Lock()
	c.session.LLMProviderID = providerID
	c.mu.Unlock()
	return nil
}

// Send submits a query and streams the decoded response into sink. At most
// one stream is active per controller: a new Send cancels the previous one
// before starting. currentPage is forwarded on the Grafana surface and
// ignored elsewhere. Send blocks until the stream finishes; run it on the
// request goroutine.
func (c *Controller) Send(ctx context.Context, query, currentPage string, sink Sink) error {
	c.mu.Lock()
	if c.phase != PhaseActive {
		c.mu.Unlock()
		return c.phaseError()
	}
	c.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	sessionID := c.session.ID
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
		c.mu.Unlock()
	}()

	switch c.surface {
	case SurfaceGrafana:
		return c.sendRevive(ctx, sessionID, query, currentPage, sink)
	case SurfaceTroubleshoot:
		return c.sendSSE(ctx, sink, func(ctx context.Context) (io.ReadCloser, error) {
			return c.client.ReviveAppQuery(ctx, platform.ReviveQuery{
				Query:       query,
				PageContext: currentPage,
				SessionID:   sessionID,
			})
		})
	default:
		return c.sendSSE(ctx, sink, func(ctx context.Context) (io.ReadCloser, error) {
			return c.client.InquiryStream(ctx, query, sessionID)
		})
	}
}

// sendSSE drives a backend SSE stream through the marker decoder.
func (c *Controller) sendSSE(ctx context.Context, sink Sink, open func(context.Context) (io.ReadCloser, error)) error {
	body, err := open(ctx)
	if err != nil {
		return err
	}
	defer body.Close() //nolint:errcheck

	dec := stream.NewDecoder(sink, c.logger)
	if err := dec.Start(); err != nil {
		return err
	}

	for ev, err := range stream.Events(ctx, body, c.logger) {
		if err != nil {
			dec.Abort()
			return err
		}
		switch ev.Type {
		case stream.EventSession:
			c.adoptSession(ev.SessionID)
		case stream.EventChunk:
			if err := dec.Feed(ev.Text()); err != nil {
				c.logger.Debug("dropping late chunk", "error", err)
			}
		case stream.EventArtifact:
			if ev.Artifact != nil {
				if err := sink.Artifact(marker.ArtifactPayload{
					ID:      ev.Artifact.ID,
					Type:    ev.Artifact.Type,
					Title:   ev.Artifact.Title,
					Content: ev.Artifact.Content,
				}); err != nil {
					dec.Abort()
					return err
				}
			}
		case stream.EventToolsUsed:
			if err := sink.ToolsUsed(ev.Tools()); err != nil {
				dec.Abort()
				return err
			}
		case stream.EventError:
			// Terminal like done: spans already complete in the buffer are
			// delivered before the error replaces the tail.
			c.finalize(dec)
			return sink.StreamError(ev.Text())
		case stream.EventDone:
			return dec.Finalize()
		}
	}

	// Stream ended without a done event; a cancelled context means the send
	// was superseded or stopped, anything else is a truncated backend stream.
	if err := ctx.Err(); err != nil {
		dec.Abort()
		return err
	}
	c.finalize(dec)
	return sink.StreamError("response stream ended unexpectedly")
}

// sendRevive drives the widget WebSocket through the marker decoder. When
// the socket cannot be established (proxies that strip the Upgrade header,
// mostly) it falls back to the one-shot SSE query endpoint.
func (c *Controller) sendRevive(ctx context.Context, sessionID, query, currentPage string, sink Sink) error {
	sock, err := c.client.DialRevive(ctx, sessionID, currentPage)
	if err != nil {
		c.logger.Warn("widget socket unavailable, falling back to SSE", "error", err)
		return c.sendSSE(ctx, sink, func(ctx context.Context) (io.ReadCloser, error) {
			return c.client.ReviveGrafanaQuery(ctx, platform.ReviveQuery{
				Query:       query,
				PageContext: currentPage,
				SessionID:   sessionID,
			})
		})
	}
	defer sock.Close() //nolint:errcheck

	if err := sock.Send(query, currentPage); err != nil {
		return err
	}

	dec := stream.NewDecoder(sink, c.logger)
	if err := dec.Start(); err != nil {
		return err
	}

	done := false
	for ev, err := range sock.Events(ctx) {
		if err != nil {
			dec.Abort()
			return err
		}
		switch ev.Type {
		case platform.ReviveConnected, platform.ReviveMode:
			c.logger.Debug("widget socket event", "type", ev.Type, "mode", ev.Mode)
		case platform.ReviveChunk:
			if err := dec.Feed(ev.Content); err != nil {
				c.logger.Debug("dropping late chunk", "error", err)
			}
		case platform.ReviveToolCall:
			if name := toolCallName(ev.ToolCall); name != "" {
				if err := sink.ToolsUsed([]string{name}); err != nil {
					dec.Abort()
					return err
				}
			}
		case platform.ReviveError:
			c.finalize(dec)
			return sink.StreamError(ev.Content)
		case platform.ReviveDone, platform.ReviveCancelled:
			done = true
		}
		if done {
			break
		}
	}
	if !done {
		if err := ctx.Err(); err != nil {
			dec.Abort()
			return err
		}
		c.finalize(dec)
		return sink.StreamError("widget stream ended unexpectedly")
	}
	return dec.Finalize()
}

// finalize runs the terminal extraction pass ahead of a stream error, so
// the error does not eat cards and suggestions that already arrived whole.
func (c *Controller) finalize(dec *stream.Decoder) {
	if err := dec.Finalize(); err != nil {
		c.logger.Warn("finalizing interrupted stream", "error", err)
	}
}

// adoptSession records a backend-minted session id announced mid-stream.
func (c *Controller) adoptSession(id string) {
	if id == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.ID == id {
		return
	}
	c.session.ID = id
	if err := c.prefs.Set(c.surface.sessionKey(), id); err != nil {
		c.logger.Warn("caching session id failed", "error", err)
	}
}

// Stop cancels the in-flight stream, if any. The partial render stays.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// stopLocked cancels the active stream. Caller holds c.mu.
func (c *Controller) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Dispose stops any stream and retires the controller permanently.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.phase = PhaseDisposed
}

// Phase returns the lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Surface returns the surface this controller serves.
func (c *Controller) Surface() Surface { return c.surface }

// SessionID returns the resolved backend session id.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.ID
}

// ProviderID returns the session's current LLM provider id.
func (c *Controller) ProviderID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.LLMProviderID
}

// Providers returns the provider list loaded at Init.
func (c *Controller) Providers() []platform.Provider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.providers
}

// History returns the messages loaded at Init.
func (c *Controller) History() []platform.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history
}

func (c *Controller) phaseError() error {
	if c.phase == PhaseDisposed {
		return ErrDisposed
	}
	return ErrNotActive
}

// toolCallName digs the tool name out of a raw tool_call frame.
func toolCallName(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var tc struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &tc); err != nil {
		return ""
	}
	return strings.TrimSpace(tc.Name)
}

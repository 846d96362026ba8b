// Package sse provides Server-Sent Events utilities for streaming responses.
package sse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// Writer wraps an http.ResponseWriter for SSE streaming.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

// NewWriter creates a new SSE writer and sets appropriate headers.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not implement http.Flusher")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	return &Writer{w: w, flusher: flusher}, nil
}

// writeData writes one event in SSE framing, handling multi-line content.
// The SSE spec requires each line of data to be prefixed with "data: ".
func (w *Writer) writeData(event, content string) error {
	if _, err := fmt.Fprintf(w.w, "event: %s\n", event); err != nil {
		return fmt.Errorf("write event name: %w", err)
	}

	for _, line := range strings.Split(content, "\n") {
		if _, err := fmt.Fprintf(w.w, "data: %s\n", line); err != nil {
			return fmt.Errorf("write data line: %w", err)
		}
	}

	// Empty line terminates the event
	if _, err := w.w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write terminator: %w", err)
	}

	w.flusher.Flush()
	return nil
}

// WriteEvent sends a named event with rendered HTML content.
// The HTMX SSE extension expects raw HTML in the data field, not JSON.
func (w *Writer) WriteEvent(ctx context.Context, event string, comp templ.Component) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context canceled: %w", ctx.Err())
	default:
	}

	var buf bytes.Buffer
	if err := comp.Render(ctx, &buf); err != nil {
		return fmt.Errorf("render component: %w", err)
	}

	return w.writeData(event, buf.String())
}

// WriteChunkRaw sends already-escaped HTML as an OOB swap replacing the
// streaming message body. The caller is responsible for escaping; residual
// text passes through the renderer exactly once upstream, so escaping here
// again would double-escape entities.
func (w *Writer) WriteChunkRaw(ctx context.Context, msgID, htmlContent string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context canceled: %w", ctx.Err())
	default:
	}

	oob := fmt.Sprintf(`<div id="msg-content-%s" hx-swap-oob="innerHTML">%s</div>`, msgID, htmlContent)
	return w.writeData("chunk", oob)
}

// WriteArtifact pushes a rendered artifact into the canvas panel.
func (w *Writer) WriteArtifact(ctx context.Context, comp templ.Component) error {
	return w.WriteEvent(ctx, "artifact", comp)
}

// WriteCanvasShow tells the page to reveal the canvas panel.
func (w *Writer) WriteCanvasShow() error {
	return w.writeData("canvas-show", "1")
}

// WriteSuggestions sends the rendered follow-up suggestion chips.
func (w *Writer) WriteSuggestions(ctx context.Context, comp templ.Component) error {
	return w.WriteEvent(ctx, "suggestions", comp)
}

// WriteDone sends the final message event, which closes the client stream.
func (w *Writer) WriteDone(ctx context.Context, comp templ.Component) error {
	return w.WriteEvent(ctx, "done", comp)
}

// WriteError sends an error event as a JSON payload.
func (w *Writer) WriteError(code, message string) error {
	payload := map[string]string{"code": code, "message": message}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	if _, err := fmt.Fprintf(w.w, "event: error\ndata: %s\n\n", data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	w.flusher.Flush()
	return nil
}

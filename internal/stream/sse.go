package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"iter"
	"log/slog"
	"strings"
)

// EventType tags one backend stream event.
type EventType string

const (
	EventSession   EventType = "session"
	EventChunk     EventType = "chunk"
	EventArtifact  EventType = "artifact"
	EventToolsUsed EventType = "tools_used"
	EventDone      EventType = "done"
	EventError     EventType = "error"
)

// ToolCall describes one backend tool invocation reported at stream end.
type ToolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// DeclaredArtifact is an artifact pushed explicitly by the backend, as
// opposed to one embedded in message text via an [ARTIFACT] marker.
type DeclaredArtifact struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Language string `json:"language,omitempty"`
}

// Event is one decoded `data: <json>` line of the inquiry stream.
//
// Content is a union field: a string for chunk and error events, a string
// array for tools_used. Use Text and Tools to read it.
type Event struct {
	Type      EventType         `json:"type"`
	SessionID string            `json:"session_id,omitempty"`
	Content   json.RawMessage   `json:"content,omitempty"`
	Artifact  *DeclaredArtifact `json:"artifact,omitempty"`
	ToolCalls []ToolCall        `json:"tool_calls,omitempty"`
}

// Text returns the string form of Content for chunk and error events.
func (e Event) Text() string {
	var s string
	if err := json.Unmarshal(e.Content, &s); err != nil {
		// Tolerate backends that send the chunk unquoted.
		return strings.TrimSpace(string(e.Content))
	}
	return s
}

// Tools returns the tool name list of a tools_used event.
func (e Event) Tools() []string {
	var tools []string
	if err := json.Unmarshal(e.Content, &tools); err != nil {
		return nil
	}
	return tools
}

// ssePrefix is the only line shape the stream protocol carries; anything
// else on the wire (comments, blank keep-alive lines) is skipped.
const ssePrefix = "data: "

// maxLineSize bounds one SSE line; artifact payloads can be large.
const maxLineSize = 1 << 20

// Events reads the SSE body line by line and yields decoded events in wire
// order. A malformed line (missing prefix or invalid JSON) is logged and
// skipped, never terminal. Iteration ends at end-of-stream, on a yield
// returning false, on ctx cancellation, or with a read error as the final
// yielded error.
func Events(ctx context.Context, r io.Reader, logger *slog.Logger) iter.Seq2[Event, error] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(yield func(Event, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)

		for scanner.Scan() {
			if ctx.Err() != nil {
				return
			}
			line := scanner.Text()
			if line == "" {
				continue
			}
			payload, ok := strings.CutPrefix(line, ssePrefix)
			if !ok {
				logger.Debug("skipping non-data SSE line", "line", truncate(line, 80))
				continue
			}

			var ev Event
			if err := json.Unmarshal([]byte(payload), &ev); err != nil {
				logger.Debug("skipping malformed SSE payload", "error", err)
				continue
			}
			if !yield(ev, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			yield(Event{}, err)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

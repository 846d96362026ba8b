package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"net/url"

	"github.com/gorilla/websocket"
)

// ReviveEventType tags inbound widget socket messages.
type ReviveEventType string

const (
	ReviveConnected ReviveEventType = "connected"
	ReviveMode      ReviveEventType = "mode"
	ReviveChunk     ReviveEventType = "chunk"
	ReviveToolCall  ReviveEventType = "tool_call"
	ReviveDone      ReviveEventType = "done"
	ReviveError     ReviveEventType = "error"
	ReviveCancelled ReviveEventType = "cancelled"
)

// ReviveEvent is one inbound message of the widget socket.
type ReviveEvent struct {
	Type     ReviveEventType `json:"type"`
	Content  string          `json:"content,omitempty"`
	Mode     string          `json:"mode,omitempty"`
	ToolCall json.RawMessage `json:"tool_call,omitempty"`
}

// reviveOutbound is the outbound message shape.
type reviveOutbound struct {
	Type        string `json:"type"` // "message" or "stop"
	Content     string `json:"content,omitempty"`
	CurrentPage string `json:"current_page,omitempty"`
}

// ReviveSocket is one live widget WebSocket connection.
type ReviveSocket struct {
	conn   *websocket.Conn
	logger *slog.Logger
}

// DialRevive opens the widget socket for a session. The token and current
// page ride in the query string, matching the backend contract.
func (c *Client) DialRevive(ctx context.Context, sessionID, currentPage string) (*ReviveSocket, error) {
	q := url.Values{}
	if c.token != "" {
		q.Set("token", c.token)
	}
	if currentPage != "" {
		q.Set("current_page", currentPage)
	}
	wsURL := c.wsBaseURL + "/ws/revive/" + url.PathEscape(sessionID)
	if enc := q.Encode(); enc != "" {
		wsURL += "?" + enc
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial revive socket: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial revive socket: %w", err)
	}
	return &ReviveSocket{conn: conn, logger: c.logger}, nil
}

// Send submits a user message over the socket.
func (s *ReviveSocket) Send(content, currentPage string) error {
	msg := reviveOutbound{Type: "message", Content: content, CurrentPage: currentPage}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send widget message: %w", err)
	}
	return nil
}

// Stop asks the backend to cancel the in-flight response.
func (s *ReviveSocket) Stop() error {
	if err := s.conn.WriteJSON(reviveOutbound{Type: "stop"}); err != nil {
		return fmt.Errorf("send stop: %w", err)
	}
	return nil
}

// Events yields inbound socket events in arrival order. Malformed frames
// are logged and skipped. Iteration ends on done/cancelled, on ctx
// cancellation, or with the read error as the final yield.
func (s *ReviveSocket) Events(ctx context.Context) iter.Seq2[ReviveEvent, error] {
	return func(yield func(ReviveEvent, error) bool) {
		// gorilla reads carry no context; closing the conn is the only way
		// to unblock a pending ReadMessage when the caller cancels.
		stop := context.AfterFunc(ctx, func() {
			s.conn.Close() //nolint:errcheck
		})
		defer stop()

		for {
			_, data, err := s.conn.ReadMessage()
			if ctx.Err() != nil {
				// Cancelled mid-read; a frame that raced the cancellation
				// must not be processed.
				return
			}
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					yield(ReviveEvent{}, fmt.Errorf("read widget socket: %w", err))
				}
				return
			}

			var ev ReviveEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				s.logger.Debug("skipping malformed widget frame", "error", err)
				continue
			}
			if !yield(ev, nil) {
				return
			}
			if ev.Type == ReviveDone || ev.Type == ReviveCancelled {
				return
			}
		}
	}
}

// Close shuts the socket down.
func (s *ReviveSocket) Close() error {
	return s.conn.Close()
}

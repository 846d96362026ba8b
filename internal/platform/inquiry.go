package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// InquiryStream starts an AI inquiry and returns the raw SSE body.
//
// The response is a text/event-stream of `data: <json>` lines; decode it
// with stream.Events. A non-OK status before any chunk arrives is returned
// as an immediate terminal error — there is no client-side retry.
func (c *Client) InquiryStream(ctx context.Context, query, sessionID string) (io.ReadCloser, error) {
	body := map[string]string{
		"query":      query,
		"session_id": sessionID,
	}
	rc, err := c.doStream(ctx, http.MethodPost, "/api/v1/inquiry/stream", body)
	if err != nil {
		return nil, fmt.Errorf("inquiry stream: %w", err)
	}
	return rc, nil
}

// ReviveQuery is the request body of the troubleshooting widget endpoints.
type ReviveQuery struct {
	Query       string `json:"query"`
	PageContext string `json:"page_context"`
	SessionID   string `json:"session_id"`
}

// ReviveAppQuery sends a widget query against the application surface and
// returns the SSE body.
func (c *Client) ReviveAppQuery(ctx context.Context, q ReviveQuery) (io.ReadCloser, error) {
	rc, err := c.doStream(ctx, http.MethodPost, "/api/revive/app/query", q)
	if err != nil {
		return nil, fmt.Errorf("revive app query: %w", err)
	}
	return rc, nil
}

// ReviveGrafanaQuery sends a widget query from an embedded Grafana page and
// returns the SSE body.
func (c *Client) ReviveGrafanaQuery(ctx context.Context, q ReviveQuery) (io.ReadCloser, error) {
	rc, err := c.doStream(ctx, http.MethodPost, "/api/revive/grafana/query", q)
	if err != nil {
		return nil, fmt.Errorf("revive grafana query: %w", err)
	}
	return rc, nil
}

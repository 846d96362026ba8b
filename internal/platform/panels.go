package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// PanelQueryResult is the backend's verdict on a panel query.
type PanelQueryResult struct {
	Valid   bool            `json:"valid"`
	Error   string          `json:"error,omitempty"`
	Series  int             `json:"series,omitempty"`
	Preview json.RawMessage `json:"preview,omitempty"`
}

// TestPanelQuery validates a PromQL expression against the backend.
func (c *Client) TestPanelQuery(ctx context.Context, query string) (PanelQueryResult, error) {
	var result PanelQueryResult
	body := map[string]string{"query": query}
	if err := c.doJSON(ctx, http.MethodPost, "/api/panels/test-query", body, &result); err != nil {
		return PanelQueryResult{}, fmt.Errorf("test panel query: %w", err)
	}
	return result, nil
}

// SnapshotQueryData fetches preview data for a validated query.
func (c *Client) SnapshotQueryData(ctx context.Context, query string) (json.RawMessage, error) {
	var data json.RawMessage
	path := withQuery("/api/snapshots/query/data", url.Values{"query": {query}})
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, fmt.Errorf("snapshot query data: %w", err)
	}
	return data, nil
}

package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// PIIQuery is the filter surface of the PII log endpoints.
// Zero values are omitted from the query string.
type PIIQuery struct {
	Page       int
	Limit      int
	Q          string
	StartDate  time.Time
	EndDate    time.Time
	EntityType string
	Engine     string
	SourceType string
}

func (q PIIQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if !q.StartDate.IsZero() {
		v.Set("start_date", q.StartDate.Format(time.RFC3339))
	}
	if !q.EndDate.IsZero() {
		v.Set("end_date", q.EndDate.Format(time.RFC3339))
	}
	if q.EntityType != "" {
		v.Set("entity_type", q.EntityType)
	}
	if q.Engine != "" {
		v.Set("engine", q.Engine)
	}
	if q.SourceType != "" {
		v.Set("source_type", q.SourceType)
	}
	return v
}

// PIILog is one detected-PII log record.
type PIILog struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	EntityType string    `json:"entity_type"`
	Engine     string    `json:"engine"`
	SourceType string    `json:"source_type"`
	Source     string    `json:"source"`
	Snippet    string    `json:"snippet"`
	Score      float64   `json:"score"`
}

// PIIPage is one page of log results.
type PIIPage struct {
	Logs  []PIILog `json:"logs"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
	Total int      `json:"total"`
}

// PIIStats is the aggregate view over detected PII.
type PIIStats struct {
	Total         int            `json:"total"`
	ByEntityType  map[string]int `json:"by_entity_type"`
	ByEngine      map[string]int `json:"by_engine"`
	BySourceType  map[string]int `json:"by_source_type"`
	FirstDetected time.Time      `json:"first_detected"`
	LastDetected  time.Time      `json:"last_detected"`
}

func withQuery(path string, v url.Values) string {
	if enc := v.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

// ListPIILogs returns one page of PII logs.
func (c *Client) ListPIILogs(ctx context.Context, q PIIQuery) (PIIPage, error) {
	var page PIIPage
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/api/v1/pii/logs", q.values()), nil, &page); err != nil {
		return PIIPage{}, fmt.Errorf("list pii logs: %w", err)
	}
	return page, nil
}

// SearchPIILogs runs a full-text search over PII logs.
func (c *Client) SearchPIILogs(ctx context.Context, q PIIQuery) (PIIPage, error) {
	var page PIIPage
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/api/v1/pii/logs/search", q.values()), nil, &page); err != nil {
		return PIIPage{}, fmt.Errorf("search pii logs: %w", err)
	}
	return page, nil
}

// GetPIILog fetches one record by id.
func (c *Client) GetPIILog(ctx context.Context, id string) (PIILog, error) {
	var log PIILog
	path := "/api/v1/pii/logs/" + url.PathEscape(id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &log); err != nil {
		return PIILog{}, fmt.Errorf("get pii log %s: %w", id, err)
	}
	return log, nil
}

// PIILogStats returns aggregate statistics.
func (c *Client) PIILogStats(ctx context.Context) (PIIStats, error) {
	var stats PIIStats
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/pii/logs/stats", nil, &stats); err != nil {
		return PIIStats{}, fmt.Errorf("pii stats: %w", err)
	}
	return stats, nil
}

// ExportPIILogs streams the export file for the given filters. The caller
// owns closing the body.
func (c *Client) ExportPIILogs(ctx context.Context, q PIIQuery) (io.ReadCloser, error) {
	rc, err := c.doStream(ctx, http.MethodGet, withQuery("/api/v1/pii/logs/export", q.values()), nil)
	if err != nil {
		return nil, fmt.Errorf("export pii logs: %w", err)
	}
	return rc, nil
}

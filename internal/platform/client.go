// Package platform is the typed client for the AIOps backend.
//
// The console holds no intelligence of its own: every session, message,
// inquiry, PII log and panel query below is owned by the backend and reached
// over the HTTP/WebSocket contract implemented here. Transport failures are
// returned to the caller for inline display; nothing retries automatically —
// retries are the user resubmitting.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrBackendStatus wraps a non-2xx backend response.
var ErrBackendStatus = errors.New("backend returned error status")

// Config configures the backend client.
type Config struct {
	// BaseURL is the backend HTTP root, e.g. "https://aiops.example.com".
	BaseURL string

	// WSBaseURL is the WebSocket root, e.g. "wss://aiops.example.com".
	// Derived from BaseURL when empty.
	WSBaseURL string

	// Token is the bearer token passed through to the backend. The
	// console never mints or validates tokens.
	Token string

	// Timeout bounds non-streaming requests. Zero means 30s.
	Timeout time.Duration
}

// Client talks to the AIOps backend.
type Client struct {
	baseURL   string
	wsBaseURL string
	token     string
	http      *http.Client
	logger    *slog.Logger
}

// NewClient validates the config and builds a Client. logger may be nil.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend base URL %q", cfg.BaseURL)
	}

	wsBase := cfg.WSBaseURL
	if wsBase == "" {
		ws := *base
		switch base.Scheme {
		case "https":
			ws.Scheme = "wss"
		default:
			ws.Scheme = "ws"
		}
		wsBase = ws.String()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   strings.TrimRight(base.String(), "/"),
		wsBaseURL: strings.TrimRight(wsBase, "/"),
		token:     cfg.Token,
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
	}, nil
}

// newRequest builds a request with auth and JSON headers applied.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// doJSON executes the request and decodes a JSON response into out.
// out may be nil for calls where only the status matters.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("close response body", "error", closeErr)
		}
	}()

	c.logger.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// doStream executes the request and hands back the raw body for callers
// that consume a stream. The caller owns closing the body.
func (c *Client) doStream(ctx context.Context, method, path string, body any) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	// Streaming responses outlive the default client timeout; rely on
	// ctx for cancellation instead.
	streamClient := &http.Client{}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close() //nolint:errcheck // error path
		return nil, statusError(resp)
	}
	return resp.Body, nil
}

// statusError turns a non-2xx response into an error carrying a short body
// snippet; backends put their diagnostic in the body.
func statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("%w: %d: %s", ErrBackendStatus, resp.StatusCode, msg)
}

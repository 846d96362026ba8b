package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Session is the backend-owned chat session. The console caches at most a
// copy for display; only the id outlives the page (see internal/state).
type Session struct {
	ID            string    `json:"id"`
	Type          string    `json:"type,omitempty"`
	Title         string    `json:"title,omitempty"`
	LLMProviderID string    `json:"llm_provider_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Message is one history entry of a session.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is an available LLM provider the user can switch a session to.
type Provider struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateSession creates a session of the given type ("inquiry",
// "troubleshoot", ...).
func (c *Client) CreateSession(ctx context.Context, sessionType string) (Session, error) {
	var s Session
	body := map[string]string{"type": sessionType}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat/sessions", body, &s); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return s, nil
}

// ListSessions returns the user's sessions, newest first.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat/sessions", nil, &sessions); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// GetSession fetches one session by id.
func (c *Client) GetSession(ctx context.Context, id string) (Session, error) {
	var s Session
	path := "/api/chat/sessions/" + url.PathEscape(id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &s); err != nil {
		return Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return s, nil
}

// RenameSession patches the session title.
func (c *Client) RenameSession(ctx context.Context, id, title string) error {
	path := "/api/chat/sessions/" + url.PathEscape(id)
	body := map[string]string{"title": title}
	if err := c.doJSON(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("rename session %s: %w", id, err)
	}
	return nil
}

// SetSessionProvider patches the session's LLM provider.
func (c *Client) SetSessionProvider(ctx context.Context, id, providerID string) error {
	path := "/api/chat/sessions/" + url.PathEscape(id) + "/provider"
	body := map[string]string{"provider_id": providerID}
	if err := c.doJSON(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("set session provider: %w", err)
	}
	return nil
}

// Messages returns the session's message history in order.
func (c *Client) Messages(ctx context.Context, id string) ([]Message, error) {
	var messages []Message
	path := "/api/chat/sessions/" + url.PathEscape(id) + "/messages"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &messages); err != nil {
		return nil, fmt.Errorf("load messages for session %s: %w", id, err)
	}
	return messages, nil
}

// ListProviders returns the available LLM providers.
func (c *Client) ListProviders(ctx context.Context) ([]Provider, error) {
	var providers []Provider
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat/providers", nil, &providers); err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return providers, nil
}

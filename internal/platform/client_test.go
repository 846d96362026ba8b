package platform

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL, Token: "tok-123"}, nil)
	require.NoError(t, err)
	return c
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"", "not-a-url", "://nope"} {
		if _, err := NewClient(Config{BaseURL: bad}, nil); err == nil {
			t.Errorf("NewClient(%q) succeeded, want error", bad)
		}
	}
}

func TestSessions_CreateAndList(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat/sessions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "inquiry", body["type"])
		_ = json.NewEncoder(w).Encode(Session{ID: "s-1", Type: "inquiry", CreatedAt: time.Now()})
	})
	mux.HandleFunc("GET /api/chat/sessions", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]Session{{ID: "s-2"}, {ID: "s-1"}})
	})

	c := testClient(t, mux)
	ctx := context.Background()

	s, err := c.CreateSession(ctx, "inquiry")
	require.NoError(t, err)
	assert.Equal(t, "s-1", s.ID)

	sessions, err := c.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestSessions_ProviderPatch(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/chat/sessions/s-1/provider", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "prov-9", body["provider_id"])
		w.WriteHeader(http.StatusNoContent)
	})

	c := testClient(t, mux)
	require.NoError(t, c.SetSessionProvider(context.Background(), "s-1", "prov-9"))
}

func TestInquiryStream_NonOKIsTerminal(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "backend unavailable", http.StatusBadGateway)
	}))

	_, err := c.InquiryStream(context.Background(), "why is it slow", "s-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendStatus))
	assert.Contains(t, err.Error(), "backend unavailable")
}

func TestInquiryStream_BodyPassthrough(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"type\":\"chunk\",\"content\":\"hi\"}\n\n")
	}))

	body, err := c.InquiryStream(context.Background(), "q", "s-1")
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck // test cleanup

	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"chunk"`)
}

func TestListPIILogs_QueryParams(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "50", q.Get("limit"))
		assert.Equal(t, "ssn", q.Get("q"))
		assert.Equal(t, "EMAIL", q.Get("entity_type"))
		assert.Equal(t, "presidio", q.Get("engine"))
		assert.Equal(t, "syslog", q.Get("source_type"))
		assert.NotEmpty(t, q.Get("start_date"))
		_ = json.NewEncoder(w).Encode(PIIPage{Page: 2, Limit: 50, Total: 120})
	}))

	page, err := c.ListPIILogs(context.Background(), PIIQuery{
		Page:       2,
		Limit:      50,
		Q:          "ssn",
		StartDate:  time.Now().Add(-24 * time.Hour),
		EntityType: "EMAIL",
		Engine:     "presidio",
		SourceType: "syslog",
	})
	require.NoError(t, err)
	assert.Equal(t, 120, page.Total)
}

func TestTestPanelQuery(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, `rate(http_requests_total[5m])`, body["query"])
		_ = json.NewEncoder(w).Encode(PanelQueryResult{Valid: true, Series: 4})
	}))

	result, err := c.TestPanelQuery(context.Background(), `rate(http_requests_total[5m])`)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 4, result.Series)
}

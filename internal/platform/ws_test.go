package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestReviveSocket_RoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/ws/revive/"))
		assert.Equal(t, "tok-123", r.URL.Query().Get("token"))
		assert.Equal(t, "/d/abc/overview", r.URL.Query().Get("current_page"))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close() //nolint:errcheck // test cleanup

		// Expect the outbound message frame first.
		var out map[string]string
		require.NoError(t, conn.ReadJSON(&out))
		assert.Equal(t, "message", out["type"])
		assert.Equal(t, "why is this panel empty", out["content"])

		for _, ev := range []ReviveEvent{
			{Type: ReviveConnected},
			{Type: ReviveMode, Mode: "troubleshoot"},
			{Type: ReviveChunk, Content: "Checking the "},
			{Type: ReviveChunk, Content: "datasource..."},
			{Type: ReviveDone},
		} {
			data, _ := json.Marshal(ev)
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
		}
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		BaseURL:   "http://backend.invalid",
		WSBaseURL: "ws" + strings.TrimPrefix(srv.URL, "http"),
		Token:     "tok-123",
	}, nil)
	require.NoError(t, err)

	ctx := context.Background()
	sock, err := c.DialRevive(ctx, "s-1", "/d/abc/overview")
	require.NoError(t, err)
	defer sock.Close() //nolint:errcheck // test cleanup

	require.NoError(t, sock.Send("why is this panel empty", "/d/abc/overview"))

	var chunks []string
	var done bool
	for ev, err := range sock.Events(ctx) {
		require.NoError(t, err)
		switch ev.Type {
		case ReviveChunk:
			chunks = append(chunks, ev.Content)
		case ReviveDone:
			done = true
		}
	}

	assert.True(t, done, "iteration must end on done")
	assert.Equal(t, "Checking the datasource...", strings.Join(chunks, ""))
}

func TestReviveSocket_CancelUnblocksSilentServer(t *testing.T) {
	defer goleak.VerifyNone(t)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close() //nolint:errcheck // test cleanup

		// Say nothing; hold the conn open until the client goes away.
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		BaseURL:   "http://backend.invalid",
		WSBaseURL: "ws" + strings.TrimPrefix(srv.URL, "http"),
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sock, err := c.DialRevive(ctx, "s-1", "")
	require.NoError(t, err)
	defer sock.Close() //nolint:errcheck // test cleanup

	returned := make(chan struct{})
	go func() {
		defer close(returned)
		for ev, err := range sock.Events(ctx) {
			t.Errorf("unexpected yield after cancel: %+v %v", ev, err)
		}
	}()

	cancel()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Events still blocked after cancellation")
	}
}

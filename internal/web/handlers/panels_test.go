package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusops/console/internal/log"
	"github.com/nimbusops/console/internal/platform"
	"github.com/nimbusops/console/internal/web/handlers"
)

func panelsFixture(t *testing.T, backend http.Handler) *http.ServeMux {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client, err := platform.NewClient(platform.Config{BaseURL: srv.URL}, log.NewNop())
	require.NoError(t, err)

	h := handlers.NewPanels(log.NewNop(), client, testTheme(t))
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func postForm(mux *http.ServeMux, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestPanelsEditor(t *testing.T) {
	t.Parallel()

	mux := panelsFixture(t, http.NotFoundHandler())

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panels", nil))

	require.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("#panel-query").Length())
	assert.Equal(t, 0, doc.Find(".panel-result").Length())
}

func TestPanelsTestQuery_Valid(t *testing.T) {
	t.Parallel()

	mux := panelsFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/panels/test-query", r.URL.Path)
		_ = json.NewEncoder(w).Encode(platform.PanelQueryResult{Valid: true, Series: 4})
	}))

	w := postForm(mux, "/panels/test-query", url.Values{"query": {`rate(http_requests_total[5m])`}})

	require.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find(".panel-result.ok").Length())
	assert.Contains(t, doc.Find(".panel-series").Text(), "4 series")
	// The query is echoed back into the editor.
	assert.Contains(t, doc.Find("#panel-query").Text(), "http_requests_total")
}

func TestPanelsTestQuery_Invalid(t *testing.T) {
	t.Parallel()

	mux := panelsFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(platform.PanelQueryResult{Valid: false, Error: "parse error at char 5"})
	}))

	w := postForm(mux, "/panels/test-query", url.Values{"query": {"rate("}})

	require.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find(".panel-result.bad").Length())
	assert.Contains(t, doc.Find(".panel-message").Text(), "parse error")
}

func TestPanelsTestQuery_Empty(t *testing.T) {
	t.Parallel()

	mux := panelsFixture(t, http.NotFoundHandler())
	w := postForm(mux, "/panels/test-query", url.Values{"query": {"  "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPanelsPreview(t *testing.T) {
	t.Parallel()

	mux := panelsFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/snapshots/query/data", r.URL.Path)
		require.Equal(t, "up", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`{"series":[{"metric":"up","values":[1]}]}`))
	}))

	w := postForm(mux, "/panels/preview", url.Values{"query": {"up"}})

	require.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	preview := doc.Find(".panel-preview").Text()
	assert.Contains(t, preview, `"metric": "up"`)
}

func TestPanelsPreview_BackendDown(t *testing.T) {
	t.Parallel()

	mux := panelsFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))

	w := postForm(mux, "/panels/preview", url.Values{"query": {"up"}})

	require.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find(".panel-error").Length())
}

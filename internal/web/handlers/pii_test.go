package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusops/console/internal/log"
	"github.com/nimbusops/console/internal/platform"
	"github.com/nimbusops/console/internal/state"
	"github.com/nimbusops/console/internal/theme"
	"github.com/nimbusops/console/internal/web/handlers"
)

func testTheme(t *testing.T) *theme.Manager {
	t.Helper()
	st, err := state.Open(t.TempDir(), log.NewNop())
	require.NoError(t, err)
	return theme.NewManager(st, log.NewNop())
}

func piiFixture(t *testing.T, backend http.Handler) *http.ServeMux {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client, err := platform.NewClient(platform.Config{BaseURL: srv.URL}, log.NewNop())
	require.NoError(t, err)

	h := handlers.NewPII(log.NewNop(), client, testTheme(t))
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func piiBackend(t *testing.T) http.Handler {
	t.Helper()
	page := platform.PIIPage{
		Logs: []platform.PIILog{
			{
				ID:         "det-1",
				Timestamp:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
				EntityType: "EMAIL_ADDRESS",
				Engine:     "presidio",
				SourceType: "chat",
				Snippet:    "contact me at ***@***.com",
				Score:      0.92,
			},
		},
		Page:  1,
		Limit: 50,
		Total: 120,
	}
	stats := platform.PIIStats{
		Total:        120,
		ByEntityType: map[string]int{"EMAIL_ADDRESS": 80, "PHONE_NUMBER": 40},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/pii/logs", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(page)
	})
	mux.HandleFunc("GET /api/v1/pii/logs/search", func(w http.ResponseWriter, r *http.Request) {
		require.NotEmpty(t, r.URL.Query().Get("q"))
		_ = json.NewEncoder(w).Encode(page)
	})
	mux.HandleFunc("GET /api/v1/pii/logs/stats", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(stats)
	})
	mux.HandleFunc("GET /api/v1/pii/logs/export", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("id,entity\ndet-1,EMAIL_ADDRESS\n"))
	})
	mux.HandleFunc("GET /api/v1/pii/logs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "det-1" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(page.Logs[0])
	})
	return mux
}

func TestPIIList(t *testing.T) {
	t.Parallel()

	mux := piiFixture(t, piiBackend(t))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pii", nil))

	require.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Find(".pii-table tbody tr").Length())
	assert.Contains(t, doc.Find(".pii-table").Text(), "EMAIL_ADDRESS")
	assert.Contains(t, doc.Find(".pii-stats").Text(), "120")
	// 120 results at 50 per page paginate.
	assert.Contains(t, doc.Find(".pagination").Text(), "Page 1 of 3")
}

func TestPIIList_SearchCarriesFilterInPager(t *testing.T) {
	t.Parallel()

	mux := piiFixture(t, piiBackend(t))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pii?q=email&engine=presidio", nil))

	require.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)

	next := doc.Find(`.pagination a[rel="next"]`)
	require.Equal(t, 1, next.Length())
	href := next.AttrOr("href", "")
	assert.Contains(t, href, "page=2")
	assert.Contains(t, href, "q=email")
	assert.Contains(t, href, "engine=presidio")
}

func TestPIIList_BackendDown(t *testing.T) {
	t.Parallel()

	mux := piiFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pii", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestPIIDetail(t *testing.T) {
	t.Parallel()

	mux := piiFixture(t, piiBackend(t))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pii/det-1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Contains(t, doc.Find(".pii-detail").Text(), "presidio")
	assert.Contains(t, doc.Find(".pii-snippet-full").Text(), "contact me at")
}

func TestPIIDetail_NotFound(t *testing.T) {
	t.Parallel()

	mux := piiFixture(t, piiBackend(t))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pii/det-missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPIIExport_StreamsThrough(t *testing.T) {
	t.Parallel()

	mux := piiFixture(t, piiBackend(t))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pii/export?entity_type=EMAIL_ADDRESS", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "pii-logs.csv")
	assert.Contains(t, w.Body.String(), "det-1,EMAIL_ADDRESS")
}

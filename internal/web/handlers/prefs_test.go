package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusops/console/internal/log"
	"github.com/nimbusops/console/internal/state"
	"github.com/nimbusops/console/internal/theme"
	"github.com/nimbusops/console/internal/web/handlers"
)

func prefsFixture(t *testing.T) (*theme.Manager, *http.ServeMux) {
	t.Helper()
	st, err := state.Open(t.TempDir(), log.NewNop())
	require.NoError(t, err)
	tm := theme.NewManager(st, log.NewNop())

	h := handlers.NewPrefs(log.NewNop(), tm)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return tm, mux
}

func postPref(mux *http.ServeMux, path, referer string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestSetTheme(t *testing.T) {
	t.Parallel()

	tm, mux := prefsFixture(t)

	w := postPref(mux, "/prefs/theme", "http://localhost/pii?page=2", url.Values{"theme": {"light"}})

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/pii?page=2", w.Header().Get("Location"))

	current, _ := tm.Current()
	assert.Equal(t, "light", current.Name)
}

func TestSetTheme_Unknown(t *testing.T) {
	t.Parallel()

	tm, mux := prefsFixture(t)

	w := postPref(mux, "/prefs/theme", "", url.Values{"theme": {"solarized"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	current, _ := tm.Current()
	assert.Equal(t, theme.DefaultTheme, current.Name)
}

func TestSetTheme_ForeignRefererNotFollowed(t *testing.T) {
	t.Parallel()

	_, mux := prefsFixture(t)

	w := postPref(mux, "/prefs/theme", "https://evil.example.com/", url.Values{"theme": {"dark"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	// Only the path survives; the foreign origin is dropped.
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestSetZoom_Steps(t *testing.T) {
	t.Parallel()

	tm, mux := prefsFixture(t)

	w := postPref(mux, "/prefs/zoom", "", url.Values{"zoom": {"1.0"}, "step": {"in"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	_, zoom := tm.Current()
	assert.InDelta(t, 1.25, zoom, 0.001)

	w = postPref(mux, "/prefs/zoom", "", url.Values{"zoom": {"1.25"}, "step": {"out"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	_, zoom = tm.Current()
	assert.InDelta(t, 1.0, zoom, 0.001)
}

func TestSetZoom_ClampsAtBounds(t *testing.T) {
	t.Parallel()

	tm, mux := prefsFixture(t)

	w := postPref(mux, "/prefs/zoom", "", url.Values{"zoom": {"2.0"}, "step": {"in"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	_, zoom := tm.Current()
	assert.InDelta(t, theme.MaxZoom, zoom, 0.001)

	w = postPref(mux, "/prefs/zoom", "", url.Values{"zoom": {"0.5"}, "step": {"out"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	_, zoom = tm.Current()
	assert.InDelta(t, theme.MinZoom, zoom, 0.001)
}

func TestSetZoom_Invalid(t *testing.T) {
	t.Parallel()

	_, mux := prefsFixture(t)
	w := postPref(mux, "/prefs/zoom", "", url.Values{"zoom": {"huge"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

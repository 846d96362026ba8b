package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusops/console/internal/artifact"
	"github.com/nimbusops/console/internal/log"
	"github.com/nimbusops/console/internal/render"
	"github.com/nimbusops/console/internal/web/handlers"
)

func artifactFixture(t *testing.T) (*handlers.Artifacts, *artifact.Store, *http.ServeMux) {
	t.Helper()
	store := artifact.NewStore(log.NewNop())
	h := handlers.NewArtifacts(log.NewNop(), store, render.NewMarkdown())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return h, store, mux
}

func seedArtifact(t *testing.T, store *artifact.Store, id string, typ artifact.Type, content string) {
	t.Helper()
	require.NoError(t, store.Add(&artifact.Artifact{ID: id, Type: typ, Title: id, Content: content}))
}

func TestArtifactPanel_Empty(t *testing.T) {
	t.Parallel()

	_, _, mux := artifactFixture(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/artifacts", nil))

	require.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find(".artifact-empty").Length())
}

func TestArtifactActivate(t *testing.T) {
	t.Parallel()

	_, store, mux := artifactFixture(t)
	seedArtifact(t, store, "tool-1", artifact.TypeCode, "one")
	seedArtifact(t, store, "tool-2", artifact.TypeCode, "two")

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/artifacts/tool-1/activate", nil))

	require.Equal(t, http.StatusOK, w.Code)
	active, ok := store.Active()
	require.True(t, ok)
	assert.Equal(t, "tool-1", active.ID)
}

func TestArtifactActivate_Unknown(t *testing.T) {
	t.Parallel()

	_, _, mux := artifactFixture(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/artifacts/nope/activate", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestArtifactPinUnpin(t *testing.T) {
	t.Parallel()

	_, store, mux := artifactFixture(t)
	seedArtifact(t, store, "tool-1", artifact.TypeCode, "one")

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/artifacts/tool-1/pin", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, store.IsPinned("tool-1"))

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/artifacts/tool-1/unpin", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, store.IsPinned("tool-1"))
}

func TestArtifactClear_KeepsPins(t *testing.T) {
	t.Parallel()

	_, store, mux := artifactFixture(t)
	seedArtifact(t, store, "tool-1", artifact.TypeCode, "one")
	store.Pin("tool-1")

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/artifacts/clear", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, store.Len())
	assert.True(t, store.IsPinned("tool-1"))
}

func TestArtifactExport_TableAsCSV(t *testing.T) {
	t.Parallel()

	_, store, mux := artifactFixture(t)
	seedArtifact(t, store, "tool-1", artifact.TypeTable, "h1|h2\nv1|v2")

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/artifacts/tool-1/export", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), `"h1","h2"`)
}

func TestArtifactExport_Unknown(t *testing.T) {
	t.Parallel()

	_, _, mux := artifactFixture(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/artifacts/nope/export", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

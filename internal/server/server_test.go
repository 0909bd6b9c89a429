package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moamenhredeen/oasdoc/internal/app"
	"github.com/moamenhredeen/oasdoc/internal/config"
)

func newTestServer(t *testing.T, opts config.Options, cfg config.Server) *Server {
	t.Helper()
	store, err := app.Build(context.Background(), app.Source{File: "../../testdata/petstore.yaml"}, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Dispose() })

	s, err := New(store, cfg)
	require.NoError(t, err)
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestPage(t *testing.T) {
	s := newTestServer(t, config.Defaults(), config.Server{})

	w := get(t, s, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<title>Swagger Petstore</title>")
	assert.Contains(t, w.Body.String(), `href="/spec.json"`)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.pages.WithLabelValues("success")))
}

func TestPageActivatesItem(t *testing.T) {
	s := newTestServer(t, config.Defaults(), config.Server{})

	w := get(t, s, "/?item=operation/createPets")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<li class="menu-item depth-2 active expanded">`)

	// unknown ids render the page without a selection
	w = get(t, s, "/?item=operation/nope")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), " active")
}

func TestPageActivationIsPerRequest(t *testing.T) {
	s := newTestServer(t, config.Defaults(), config.Server{})

	w := get(t, s, "/?item=operation/createPets")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `depth-2 active expanded`)

	w = get(t, s, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), " active")
	assert.NotContains(t, w.Body.String(), " expanded")
	assert.Nil(t, s.store.Menu.ActiveItem())
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, config.Defaults(), config.Server{})
	assert.Equal(t, http.StatusNotFound, get(t, s, "/nope").Code)
}

func TestSpec(t *testing.T) {
	s := newTestServer(t, config.Defaults(), config.Server{})

	w := get(t, s, "/spec.json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="openapi.json"`)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
}

func TestSpecHidden(t *testing.T) {
	s := newTestServer(t, config.Normalize(config.Raw{HideDownloadButton: true}), config.Server{})
	assert.Equal(t, http.StatusNotFound, get(t, s, "/spec.json").Code)
}

func TestSearch(t *testing.T) {
	s := newTestServer(t, config.Defaults(), config.Server{})

	w := get(t, s, "/api/search?q=pets")
	require.Equal(t, http.StatusOK, w.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pets", resp.Query)

	names := map[string]string{}
	for _, hit := range resp.Results {
		names[hit.ID] = hit.Name
	}
	assert.Equal(t, "List all pets", names["operation/listPets"])

	w = get(t, s, "/api/search")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Results)
}

func TestSearchRateLimited(t *testing.T) {
	s := newTestServer(t, config.Defaults(), config.Server{SearchRate: 0.001, SearchBurst: 1})

	assert.Equal(t, http.StatusOK, get(t, s, "/api/search?q=pets").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, s, "/api/search?q=pets").Code)
}

func TestSearchDisabled(t *testing.T) {
	s := newTestServer(t, config.Normalize(config.Raw{DisableSearch: true}), config.Server{})
	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/search?q=pets").Code)
}

func TestSearchDisposed(t *testing.T) {
	s := newTestServer(t, config.Defaults(), config.Server{})
	require.NoError(t, s.store.Dispose())
	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/api/search?q=pets").Code)
}

func TestMenu(t *testing.T) {
	s := newTestServer(t, config.Defaults(), config.Server{})

	w := get(t, s, "/api/menu")
	require.Equal(t, http.StatusOK, w.Code)

	var entries []MenuEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.NotEmpty(t, entries)
	assert.Equal(t, "section/Introduction", entries[0].ID)

	for i, e := range entries {
		assert.Equal(t, i, e.AbsoluteIdx)
		if e.ID == "operation/listPets" {
			assert.Equal(t, "get", e.HTTPVerb)
			assert.Equal(t, "tag/pet", e.Parent)
		}
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, config.Defaults(), config.Server{})

	w := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	get(t, s, "/")
	w = get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `oasdoc_http_page_renders_total{status="success"} 1`))
}

func TestStartShutdown(t *testing.T) {
	s := newTestServer(t, config.Defaults(), config.Server{Addr: "127.0.0.1:0"})

	errc := make(chan error, 1)
	go func() { errc <- s.Start() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-errc)
}

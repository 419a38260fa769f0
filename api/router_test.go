package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viktorsistem/katalog/assets"
	"github.com/viktorsistem/katalog/catmap"
	"github.com/viktorsistem/katalog/config"
	"github.com/viktorsistem/katalog/engine"
	"github.com/viktorsistem/katalog/models"
	"github.com/viktorsistem/katalog/store"
)

func testRouter(t *testing.T, apiKeys []string) http.Handler {
	t.Helper()

	cfg := config.Load()
	cfg.Server.Mode = "test"
	cfg.Server.APIKeys = apiKeys
	cfg.Server.RequestsPerSecond = 1000
	cfg.Server.Burst = 1000
	cfg.Assets.UploadDir = t.TempDir()

	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "products.json"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	downloader := assets.New(cfg.Assets.UploadDir, 5*time.Second)
	eng := engine.New(st, downloader, catmap.Default(), nil, cfg.Scraper)

	return NewRouter(eng, st, cfg, time.Now())
}

func TestHealth_OpenAccess(t *testing.T) {
	r := testRouter(t, []string{"secret"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestScrape_RequiresAPIKey(t *testing.T) {
	r := testRouter(t, []string{"secret"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(`{"url":"https://x.example/p","brand":"Acme"}`))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrCodeUnauthorized)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(`{"url":"","brand":"Acme"}`))
	req.Header.Set("X-API-Key", "secret")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "authorized request must reach the handler")
}

func TestScrape_MalformedBodyIs400(t *testing.T) {
	r := testRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(`{"url": 42`))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScrape_PipelineFailureIs200Envelope(t *testing.T) {
	r := testRouter(t, nil)

	// Well-formed request, empty URL: the pipeline rejects it, but over HTTP
	// that is a successful call carrying a failed result.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(`{"url":"","brand":"Acme"}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])
}

func TestListProducts_RequiresBrand(t *testing.T) {
	r := testRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products?brand=Interra", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(0), body["count"])
}

func TestBulk_EmptyURLsIs400(t *testing.T) {
	r := testRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/crawl/bulk", strings.NewReader(`{"urls":[],"brand":"Acme"}`))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

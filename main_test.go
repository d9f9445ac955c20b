package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/d3ming/ycx25-voter/config"
	"github.com/d3ming/ycx25-voter/models"
	"github.com/d3ming/ycx25-voter/services"
	"github.com/d3ming/ycx25-voter/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, apiKey string) (*gin.Engine, []models.Company) {
	t.Helper()
	cfg := &config.Config{
		DBDriver:     "sqlite",
		SQLitePath:   filepath.Join(t.TempDir(), "companies.db"),
		APISecretKey: apiKey,
	}
	db, err := storage.OpenDB(cfg)
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))

	companies := []models.Company{
		{Name: "Acme", Tier: models.TierC, FoundedYear: models.Unknown, Location: models.Unknown},
		{Name: "Beta", Tier: models.TierC, Rank: 1, FoundedYear: models.Unknown, Location: models.Unknown},
	}
	companies[0].SetFounders([]models.Founder{{Name: "Jane Doe"}})
	companies[0].SetTags(nil)
	companies[1].SetFounders(nil)
	companies[1].SetTags([]string{"fintech"})
	for i := range companies {
		require.NoError(t, db.Create(&companies[i]).Error)
	}

	svc := services.NewCompanyService(db, zap.NewNop())
	return newRouter(cfg, svc, nil, zap.NewNop()), companies
}

func do(t *testing.T, r http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealthAndRequestID(t *testing.T) {
	r, _ := newTestRouter(t, "")
	w := do(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(t, r, http.MethodGet, "/health", "", "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestListAndGet(t *testing.T) {
	r, cs := newTestRouter(t, "")

	w := do(t, r, http.MethodGet, "/api/companies", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]services.CompanyView](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "Beta", list[0].Name)
	assert.Equal(t, []string{"fintech"}, list[0].Tags)

	w = do(t, r, http.MethodGet, "/api/companies/"+idStr(cs[0].ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	one := decode[services.CompanyView](t, w)
	assert.Equal(t, []models.Founder{{Name: "Jane Doe"}}, one.Founders)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/companies/999", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/companies/abc", "").Code)
}

func TestRankEndpoints(t *testing.T) {
	r, cs := newTestRouter(t, "")
	base := "/api/companies/" + idStr(cs[0].ID)

	w := do(t, r, http.MethodPost, base+"/increment", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["rank"])

	w = do(t, r, http.MethodPost, base+"/decrement", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["rank"])

	w = do(t, r, http.MethodPost, base+"/rank", `{"rank": 0}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["rank"])

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, base+"/rank", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPost, "/api/companies/999/increment", "").Code)
}

func TestTierEndpoint(t *testing.T) {
	r, cs := newTestRouter(t, "")
	base := "/api/companies/" + idStr(cs[0].ID)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, base+"/tier", `{"tier": "E"}`).Code)

	w := do(t, r, http.MethodPost, base+"/tier", `{"tier": "A"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A", decode[map[string]any](t, w)["tier"])

	list := decode[[]services.CompanyView](t, do(t, r, http.MethodGet, "/api/companies", ""))
	assert.Equal(t, "Acme", list[0].Name)
}

func TestTagEndpoints(t *testing.T) {
	r, cs := newTestRouter(t, "")
	base := "/api/companies/" + idStr(cs[0].ID)

	w := do(t, r, http.MethodPost, base+"/tags", `{"tag": "<b>devtools</b>"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, true, body["added"])
	assert.Equal(t, []any{"devtools"}, body["tags"])

	w = do(t, r, http.MethodPost, base+"/tags", `{"tag": "devtools"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, w)["added"])

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, base+"/tags", `{"tag": "  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodDelete, base+"/tags/5", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodDelete, base+"/tags/x", "").Code)

	w = do(t, r, http.MethodDelete, base+"/tags/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode[map[string]any](t, w)
	assert.Equal(t, "devtools", body["removed"])
	assert.Equal(t, []any{}, body["tags"])
}

func TestSearchAndStats(t *testing.T) {
	r, _ := newTestRouter(t, "")

	list := decode[[]services.CompanyView](t, do(t, r, http.MethodGet, "/api/search?q=jane", ""))
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Name)

	list = decode[[]services.CompanyView](t, do(t, r, http.MethodGet, "/api/search?tag=FinTech&tag=ai", ""))
	require.Len(t, list, 1)
	assert.Equal(t, "Beta", list[0].Name)

	list = decode[[]services.CompanyView](t, do(t, r, http.MethodGet, "/api/search", ""))
	assert.Len(t, list, 2)

	stats := decode[services.Stats](t, do(t, r, http.MethodGet, "/api/stats", ""))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Ranked)
	assert.Equal(t, "Beta", stats.BestRanked)
}

func TestSnapshotWithoutStorage(t *testing.T) {
	r, _ := newTestRouter(t, "")
	assert.Equal(t, http.StatusServiceUnavailable, do(t, r, http.MethodPost, "/api/snapshots", "").Code)
}

func TestAPIKey(t *testing.T) {
	r, _ := newTestRouter(t, "secret")
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, "/api/companies", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/companies", "", "X-API-KEY", "secret").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/health", "").Code)

	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, "/metrics", "").Code)
	w := do(t, r, http.MethodGet, "/metrics", "", "X-API-KEY", "secret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "companies_ingested_total")
}

func idStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

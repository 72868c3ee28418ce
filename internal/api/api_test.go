package api

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spivot-hq/spivot/backend-go/internal/config"
	"github.com/spivot-hq/spivot/backend-go/internal/service"
	"github.com/spivot-hq/spivot/backend-go/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	router := NewRouter(nil, Options{Metrics: metrics.New(), Version: "test"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	db := pingFunc(func(context.Context) error { return errors.New("connection refused") })
	router := NewRouter(nil, Options{Metrics: metrics.New(), DB: db})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded"`)
}

func TestUnknownRoute(t *testing.T) {
	router := NewRouter(&Services{}, Options{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cashflow/analysis", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEngineRoutesAndMetrics(t *testing.T) {
	rec := metrics.New()
	engine := service.NewEngine(config.DefaultEngineConfig(), rand.NewPCG(3, 4))
	router := NewRouter(&Services{Engine: engine}, Options{Metrics: rec})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/engine/score",
		strings.NewReader(`{"cash_consistency":80,"revenue_growth_pct":10,"vendor_payment_history":90}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "spivot_engine_operations_total")
	assert.Contains(t, w.Body.String(), `route="/api/v1/engine/score"`)
}

func TestRequestIDIsPropagated(t *testing.T) {
	router := NewRouter(nil, Options{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"https://a.example, https://b.example", " ", "https://c.example"})
	assert.False(t, allowAll)
	assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, origins)

	origins, allowAll = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, allowAll)
	assert.Empty(t, origins)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	router := NewRouter(nil, Options{AllowedOrigins: []string{"https://app.spivot.io"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.spivot.io")
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://app.spivot.io", w.Header().Get("Access-Control-Allow-Origin"))
}

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveEngine(t *testing.T) {
	r := New()
	r.ObserveEngine("liquidity.analyze", time.Now(), nil)
	r.ObserveEngine("liquidity.analyze", time.Now(), errors.New("boom"))
	r.ObserveEngine("liquidity.analyze", time.Now(), nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.engineOps.WithLabelValues("liquidity.analyze", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.engineOps.WithLabelValues("liquidity.analyze", "error")))
}

func TestRecordCache(t *testing.T) {
	r := New()
	r.RecordCache("cashflow", true)
	r.RecordCache("cashflow", false)
	r.RecordCache("cashflow", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheRequests.WithLabelValues("cashflow", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheRequests.WithLabelValues("cashflow", "miss")))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveEngine("x", time.Now(), nil)
		r.RecordAlert("a", "info")
		r.RecordCache("k", true)
		r.RecordEvent("e", nil)
		r.RecordDocument("completed")
	})
}

func TestGinMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New()

	router := gin.New()
	router.Use(r.GinMiddleware())
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/metrics", gin.WrapH(r.Handler()))

	for _, id := range []string{"1", "2", "3"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("/items/:id", http.MethodGet, "204")))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "spivot_http_requests_total")
}

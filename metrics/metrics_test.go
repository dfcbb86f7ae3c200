package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m Meter) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestNew(t *testing.T) {
	t.Run("nil 配置报错", func(t *testing.T) {
		_, err := New(nil)
		assert.Error(t, err)
	})

	t.Run("禁用时返回 noop", func(t *testing.T) {
		m, err := New(&Config{Enabled: false})
		require.NoError(t, err)
		_, ok := m.(noopMeter)
		assert.True(t, ok)
	})
}

func TestMeter_Export(t *testing.T) {
	m, err := New(NewDevDefaultConfig("portalgun-test"))
	require.NoError(t, err)
	defer m.Shutdown(context.Background())

	ctx := context.Background()

	c, err := m.Counter("reqqueue_dedupe_hits_total", "dedupe hits")
	require.NoError(t, err)
	c.Inc(ctx, L("queue", "avatar"))
	c.Add(ctx, 2, L("queue", "avatar"))

	g, err := m.Gauge("reqqueue_running", "running tasks")
	require.NoError(t, err)
	g.Inc(ctx)
	g.Inc(ctx)
	g.Dec(ctx)

	h, err := m.Histogram("reqqueue_task_duration_seconds", "task duration", WithUnit("s"), WithBuckets([]float64{0.1, 1}))
	require.NoError(t, err)
	h.Record(ctx, 0.05)

	body := scrape(t, m)
	assert.Contains(t, body, "reqqueue_dedupe_hits")
	assert.True(t, strings.Contains(body, "reqqueue_running"), body)
	assert.Contains(t, body, "reqqueue_task_duration")
	assert.Contains(t, body, "_bucket")
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "2xx", HTTPStatusClass(204))
	assert.Equal(t, "5xx", HTTPStatusClass(503))
	assert.Equal(t, "unknown", HTTPStatusClass(42))
	assert.Equal(t, OutcomeSuccess, HTTPOutcome(304))
	assert.Equal(t, OutcomeError, HTTPOutcome(429))
	assert.Equal(t, OutcomeSuccess, Outcome(nil))
	assert.Equal(t, OutcomeError, Outcome(errors.New("x")))
}

func TestGinHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m, err := New(NewDevDefaultConfig("portalgun-test"))
	require.NoError(t, err)
	httpMetrics, err := NewHTTPServerMetrics(m, "portalgun")
	require.NoError(t, err)

	r := gin.New()
	r.Use(GinHTTPMiddleware(httpMetrics))
	r.GET("/api/characters/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/characters/1", "/missing"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t, m)
	assert.Contains(t, body, `route="/api/characters/:id"`)
	assert.Contains(t, body, `route="unknown"`)
	assert.NotContains(t, body, "/api/characters/1")
}

func TestDiscard(t *testing.T) {
	m := Discard()
	c, err := m.Counter("x", "x")
	require.NoError(t, err)
	c.Inc(context.Background())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, m.Shutdown(context.Background()))
}

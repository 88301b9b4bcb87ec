package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordAccessDenied("read_file")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.AccessDenied.WithLabelValues("read_file")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.AccessDenied.WithLabelValues("read_file")))
}

func TestToolMetrics(t *testing.T) {
	m := NewMetrics()

	timer := NewTimer(m, "filesystem", "read_file")
	assert.GreaterOrEqual(t, timer.Stop("success"), time.Duration(0))
	m.RecordToolCall("filesystem", "read_file", "failure", time.Millisecond)
	m.RecordToolError("filesystem", "read_file", "NotFound")
	m.SetAllowedDirectories(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("filesystem", "read_file", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolErrors.WithLabelValues("filesystem", "read_file", "NotFound")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AllowedDirectories))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.ToolCalls)
	assert.Equal(t, int64(1), snap.ToolFailures)
	assert.Greater(t, snap.UptimeSeconds, 0.0)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/items/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for _, path := range []string{"/items/1", "/items/2", "/nowhere"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()
	m.RecordAccessDenied("write_file")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `fsserver_access_denied_total{tool="write_file"} 1`))
	assert.Contains(t, body, "fsserver_uptime_seconds")
}

package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/GriffinCanCode/AgentOS/fsserver/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/sandbox"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/shared/types"
	"github.com/gin-gonic/gin"
)

// executionErrorKind labels tool calls whose provider returned an error.
const executionErrorKind = "ExecutionError"

// HandlerMetrics wraps handlers with metrics tracking
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// MetricsSummary provides high-level metrics
type MetricsSummary struct {
	TotalRequests    int64   `json:"total_requests"`
	AverageLatencyMs float64 `json:"average_latency_ms"`
	ErrorRate        float64 `json:"error_rate"`
	ToolCalls        int64   `json:"tool_calls"`
	ToolFailures     int64   `json:"tool_failures"`
	AccessDenied     int64   `json:"access_denied"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
}

// NewHandlerMetrics creates a metrics wrapper
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// TrackTool starts timing a tool call. The returned func records the
// outcome once the result is known; a nil result marks a call that failed
// without producing one.
func (hm *HandlerMetrics) TrackTool(toolID string) func(*types.Result) {
	if hm.metrics == nil {
		return func(*types.Result) {}
	}

	serviceID, tool, _ := strings.Cut(toolID, ".")
	timer := monitoring.NewTimer(hm.metrics, serviceID, tool)
	return func(result *types.Result) {
		if result == nil {
			timer.Stop("error")
			hm.metrics.RecordToolError(serviceID, tool, executionErrorKind)
			return
		}
		if result.Success {
			timer.Stop("success")
			return
		}
		timer.Stop("failure")
		hm.metrics.RecordToolError(serviceID, tool, result.ErrorKind)
		if result.ErrorKind == string(sandbox.KindAccessDenied) {
			hm.metrics.RecordAccessDenied(tool)
		}
	}
}

// Summary condenses the metrics snapshot
func (hm *HandlerMetrics) Summary() MetricsSummary {
	if hm.metrics == nil {
		return MetricsSummary{}
	}

	snap := hm.metrics.Snapshot()
	summary := MetricsSummary{
		TotalRequests: snap.TotalRequests,
		ToolCalls:     snap.ToolCalls,
		ToolFailures:  snap.ToolFailures,
		AccessDenied:  snap.AccessDenied,
		UptimeSeconds: snap.UptimeSeconds,
	}
	if snap.TotalRequests > 0 {
		summary.AverageLatencyMs = snap.TotalDuration / float64(snap.TotalRequests) * float64(time.Second/time.Millisecond)
		summary.ErrorRate = float64(snap.TotalErrors) / float64(snap.TotalRequests)
	}
	return summary
}

// MetricsSummaryHandler serves the summary as JSON
func (h *Handlers) MetricsSummaryHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Summary())
}

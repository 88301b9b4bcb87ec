package http

import (
	"errors"
	"net/http"

	"github.com/GriffinCanCode/AgentOS/fsserver/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/sandbox"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/service"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/shared/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the root endpoint.
const Version = "0.3.0"

const maxDiscoverLimit = 20

// Handlers contains all HTTP handlers
type Handlers struct {
	registry *service.Registry
	fs       *sandbox.FS
	metrics  *HandlerMetrics
	logger   *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(registry *service.Registry, fs *sandbox.FS, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		registry: registry,
		fs:       fs,
		metrics:  NewHandlerMetrics(metrics),
		logger:   logger,
	}
}

// Root handles the status check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Secure Filesystem Server",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "healthy",
		"allowed_directories": len(h.fs.ListAllowedDirectories()),
		"service_registry":    h.registry.Stats(),
		"metrics":             h.metrics.Summary(),
	})
}

// ListServices lists all available services
func (h *Handlers) ListServices(c *gin.Context) {
	var category *types.Category
	if raw := c.Query("category"); raw != "" {
		cat := types.Category(raw)
		switch cat {
		case types.CategoryFilesystem, types.CategorySystem:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category: " + raw})
			return
		}
		category = &cat
	}

	c.JSON(http.StatusOK, gin.H{
		"services": h.registry.List(category),
		"stats":    h.registry.Stats(),
	})
}

// GetTool describes a single tool
func (h *Handlers) GetTool(c *gin.Context) {
	tool, ok := h.registry.Tool(c.Param("tool_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "tool not found"})
		return
	}
	c.JSON(http.StatusOK, tool)
}

// DiscoverServices ranks services by relevance to a free-text query
func (h *Handlers) DiscoverServices(c *gin.Context) {
	var req types.DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := req.Limit
	if limit <= 0 || limit > maxDiscoverLimit {
		limit = 5
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    req.Query,
		"services": h.registry.Discover(req.Query, limit),
	})
}

// ExecuteService executes a service tool. Tool-level failures are
// reported in the result body with status 200.
func (h *Handlers) ExecuteService(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, validation.MaxRequestSize)

	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validation.ValidateToolID(req.ToolID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validation.ValidateParams(req.Params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requestID := middleware.GetRequestID(c)
	clientIP := c.ClientIP()
	appCtx := &types.Context{RequestID: &requestID, ClientIP: &clientIP}

	done := h.metrics.TrackTool(req.ToolID)
	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, appCtx)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToolID):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrServiceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			done(nil)
			h.logger.Error("tool execution failed",
				zap.String("tool", req.ToolID),
				zap.String("request_id", requestID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	done(result)

	if !result.Success {
		h.logger.Debug("tool failed",
			zap.String("tool", req.ToolID),
			zap.String("kind", result.ErrorKind),
			zap.String("request_id", requestID))
	}
	c.JSON(http.StatusOK, result)
}

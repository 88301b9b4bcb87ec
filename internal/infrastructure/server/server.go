package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/AgentOS/fsserver/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/providers/filesystem"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/sandbox"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/service"
)

const shutdownTimeout = 10 * time.Second

// ErrNoAllowedDirectories is returned when the configuration names no
// directory to serve.
var ErrNoAllowedDirectories = errors.New("at least one allowed directory is required")

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	handler  http.Handler
	registry *service.Registry
	fs       *sandbox.FS
	logger   *zap.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// Option customizes a Server
type Option func(*Server)

// WithLogger replaces the logger built from the configuration
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{config: cfg}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		logger, err := logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		s.logger = logger
	}

	if len(cfg.Sandbox.AllowedDirs) == 0 {
		return nil, ErrNoAllowedDirectories
	}
	allow, err := sandbox.NewAllowList(cfg.Sandbox.AllowedDirs)
	if err != nil {
		return nil, err
	}
	s.fs = sandbox.New(allow,
		sandbox.WithLogger(s.logger.Named("sandbox")),
		sandbox.WithLimits(cfg.Limits()),
	)
	s.logger.Info("Sandbox initialized", zap.Strings("allowed_directories", allow.Roots()))

	s.metrics = monitoring.NewMetrics()
	s.metrics.SetAllowedDirectories(allow.Len())

	s.registry = service.NewRegistry()
	if err := s.registry.Register(filesystem.NewProvider(s.fs, s.logger.Named("filesystem"))); err != nil {
		return nil, fmt.Errorf("failed to register filesystem provider: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery(s.logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(s.logger.Named("http")))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
			zap.Bool("global", cfg.RateLimit.Global),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		if cfg.RateLimit.Global {
			router.Use(middleware.GlobalRateLimit(rl))
		} else {
			router.Use(middleware.RateLimit(rl))
		}
	}

	handlers := apihttp.NewHandlers(s.registry, s.fs, s.metrics, s.logger.Named("api"))
	apihttp.RegisterRoutes(router, handlers, s.metrics)
	s.router = router

	gzip, err := gzhttp.NewWrapper(gzhttp.MinSize(1024))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip wrapper: %w", err)
	}
	s.handler = gzip(router)

	s.logger.Info("Server initialized successfully")
	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Registry returns the service registry
func (s *Server) Registry() *service.Registry {
	return s.registry
}

// Run serves HTTP on the configured address until ctx is canceled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close flushes the logger
func (s *Server) Close() error {
	_ = s.logger.Sync()
	return nil
}

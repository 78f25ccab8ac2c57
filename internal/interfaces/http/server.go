// Package http assembles the gin engine and the HTTP server lifecycle.
package http

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/MarkSentinel/internal/config"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/metrics"
	"github.com/turtacn/MarkSentinel/internal/interfaces/http/handlers"
	"github.com/turtacn/MarkSentinel/internal/interfaces/http/middleware"
	"github.com/turtacn/MarkSentinel/pkg/errors"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Items   *handlers.ItemHandler
	Alerts  *handlers.AlertHandler
	Health  *handlers.HealthHandler
	Metrics *metrics.Metrics
	Logger  logging.Logger
}

// NewRouter builds the gin engine with the full middleware chain and routes.
func NewRouter(cfg config.ServerConfig, deps RouterDeps) *gin.Engine {
	gin.SetMode(cfg.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging(deps.Logger, deps.Metrics))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	limits := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		limits.RequestsPerSecond = float64(cfg.RateLimitRPS)
		limits.BurstSize = cfg.RateLimitRPS * 2
	}
	r.Use(middleware.RateLimit(limits))

	deps.Health.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	deps.Items.RegisterRoutes(api)
	deps.Alerts.RegisterRoutes(api)

	return r
}

// Server wraps http.Server with graceful shutdown.
type Server struct {
	srv    *http.Server
	cfg    config.ServerConfig
	logger logging.Logger
}

// NewServer binds the engine to the configured port.
func NewServer(cfg config.ServerConfig, engine *gin.Engine, logger logging.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, errors.ErrCodeInternal, "http server failed")
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := s.srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "http server shutdown failed")
	}
	return nil
}

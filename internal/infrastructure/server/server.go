package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/pageloader/internal/api/http"
	"github.com/GriffinCanCode/pageloader/internal/api/middleware"
	"github.com/GriffinCanCode/pageloader/internal/infrastructure/logging"
	"github.com/GriffinCanCode/pageloader/internal/infrastructure/monitoring"
)

// Config contains preview server configuration
type Config struct {
	Addr        string
	Development bool
	Reload      middleware.RateLimitConfig
	CORSOrigins []string             // empty allows any origin
	Registry    *prometheus.Registry // nil disables /metrics
	Metrics     *monitoring.Metrics  // nil disables request metrics
}

// Server serves the preview routes
type Server struct {
	router   *gin.Engine
	handlers *apihttp.Handlers
	http     *http.Server
	logger   *logging.Logger
}

// New creates a preview server around load
func New(cfg Config, load apihttp.LoadFunc, logger *logging.Logger) *Server {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(logger))
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	router.Use(middleware.CORS(corsCfg))
	if cfg.Metrics != nil {
		router.Use(monitoring.Middleware(cfg.Metrics))
	}

	handlers := apihttp.NewHandlers(load, logger)

	router.GET("/", handlers.Page)
	router.GET("/health", handlers.Health)
	router.GET("/report", handlers.Report)
	router.GET("/query", handlers.Query)
	router.POST("/reload", middleware.RateLimit(cfg.Reload), handlers.ReloadPage)
	if cfg.Registry != nil {
		router.GET("/metrics", gin.WrapH(monitoring.Handler(cfg.Registry)))
	}

	return &Server{
		router:   router,
		handlers: handlers,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.Named("server"),
	}
}

// Handler returns the router, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Handlers returns the preview handlers
func (s *Server) Handlers() *apihttp.Handlers {
	return s.handlers
}

// Run loads the page once, then serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.handlers.Reload(ctx); err != nil {
		s.logger.Warn("initial page load failed", zap.Error(err))
	}

	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("Starting preview server", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}

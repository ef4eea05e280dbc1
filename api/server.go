// Package api exposes crawl tasks over HTTP: start a crawl, poll its
// progress and fetch the finished export.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/lukemcguire/docscrape/logger"
	"github.com/lukemcguire/docscrape/metrics"
)

// Config holds the HTTP server settings.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	SubmitRate      float64 // Crawl submissions per second
	SubmitBurst     int
}

// Server is the HTTP front end of the crawl service.
type Server struct {
	cfg    Config
	engine *gin.Engine
	srv    *http.Server
	log    logger.Logger
}

// NewRouter builds the gin engine with every route. m may be nil, in which
// case /metrics is not served.
func NewRouter(cfg Config, h *Handler, m *metrics.Metrics, log logger.Logger) *gin.Engine {
	if log == nil {
		log = logger.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(log))

	r.GET("/health", h.Health)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	burst := max(cfg.SubmitBurst, 1)
	limit := rate.Limit(cfg.SubmitRate)
	if cfg.SubmitRate <= 0 {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, burst)

	v1 := r.Group("/api")
	v1.POST("/scrape", RateLimitMiddleware(limiter), h.Scrape)
	v1.GET("/progress/:task_id", h.Progress)
	v1.GET("/result/:task_id", h.Result)
	v1.GET("/download/:task_id", h.Download)
	v1.GET("/tasks", h.Tasks)

	return r
}

// NewServer wraps the router in an http.Server listening on cfg.Address.
func NewServer(cfg Config, h *Handler, m *metrics.Metrics, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	engine := NewRouter(cfg, h, m, log)
	return &Server{
		cfg:    cfg,
		engine: engine,
		log:    log,
		srv: &http.Server{
			Addr:              cfg.Address,
			Handler:           engine,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx ends, then shuts down gracefully within
// ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", logger.String("address", s.cfg.Address))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve %s: %w", s.cfg.Address, err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("HTTP server shutting down")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

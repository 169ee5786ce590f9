// Package api exposes discovery runs over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"

	"gocausal/app"
	"gocausal/internal"
	"gocausal/internal/config"
)

// Server routes HTTP requests to the discovery service
type Server struct {
	router   *chi.Mux
	service  *app.DiscoveryService
	defaults config.DiscoveryConfig
	fits     *semaphore.Weighted
	logger   *internal.Logger

	maxBodyBytes int64
}

// Config holds server settings
type Config struct {
	MaxConcurrentFits int64
	MaxBodyBytes      int64 // POST /api/discover body cap, DefaultMaxBodyBytes when unset
	Defaults          config.DiscoveryConfig
}

// DefaultMaxBodyBytes caps discovery request bodies at 32 MiB
const DefaultMaxBodyBytes = 32 << 20

// NewServer creates a server over service
func NewServer(service *app.DiscoveryService, cfg Config, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.MaxConcurrentFits < 1 {
		cfg.MaxConcurrentFits = 1
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		router:   chi.NewRouter(),
		service:  service,
		defaults: cfg.Defaults,
		fits:     semaphore.NewWeighted(cfg.MaxConcurrentFits),
		logger:   logger,

		maxBodyBytes: cfg.MaxBodyBytes,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() {
	s.router.NotFound(s.handleNotFound)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/discover", s.handleDiscover)
		r.Get("/runs", s.handleListRuns)
		r.Route("/runs/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetRun)
			r.Get("/mechanisms", s.handleMechanisms)
			r.Get("/compare/{other}", s.handleCompare)
			r.Get("/graph.dot", s.handleGraphDOT)
			r.Get("/graph.svg", s.handleGraphSVG)
			r.Get("/report", s.handleReport)
		})
	})
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[API] listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.logger.Info("[API] shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

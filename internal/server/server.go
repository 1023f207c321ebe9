// Package server exposes the heatmap pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz       liveness and build info
//	POST /v1/heatmaps   render points, respond with the first requested artifact
//	POST /v1/grids      build points, respond with the normalized grid JSON
//
// Requests share one [pipeline.Runner] and therefore its cache. Background
// images are read only from the directory given by [WithBackgroundDir].
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/heatmap/pkg/pipeline"
)

// Defaults for request limits.
const (
	DefaultMaxPoints   = 1_000_000
	DefaultMaxBodySize = 64 << 20
	DefaultTimeout     = 60 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	runner      *pipeline.Runner
	logger      *log.Logger
	maxPoints   int
	maxBodySize int64
	timeout     time.Duration
	bgDir       string
	router      chi.Router
}

// Option configures a Server.
type Option func(*Server)

func WithMaxPoints(n int) Option         { return func(s *Server) { s.maxPoints = n } }
func WithMaxBodySize(n int64) Option     { return func(s *Server) { s.maxBodySize = n } }
func WithTimeout(d time.Duration) Option { return func(s *Server) { s.timeout = d } }
func WithLogger(l *log.Logger) Option    { return func(s *Server) { s.logger = l } }

// WithBackgroundDir lets requests name a background image by a relative path
// inside dir. Without it, requests with a background are rejected.
func WithBackgroundDir(dir string) Option { return func(s *Server) { s.bgDir = dir } }

// New creates a server around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:      runner,
		logger:      runner.Logger,
		maxPoints:   DefaultMaxPoints,
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimw.RealIP)
	r.Use(s.observe)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(chimw.Timeout(s.timeout))
		v1.Post("/heatmaps", s.handleHeatmap)
		v1.Post("/grids", s.handleGrid)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}

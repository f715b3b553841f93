// Package server exposes dependency tree resolution over HTTP.
//
// Routes:
//
//	POST /v1/tree         resolve a posted package.json, respond with the tree
//	POST /v1/locks        resolve and store a lock, respond 201 with the lock
//	GET  /v1/locks/{id}   load a stored lock
//	GET  /healthz         liveness
//	GET  /metrics         Prometheus metrics
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/ziplock/pkg/lockfile"
	"github.com/matzehuels/ziplock/pkg/manifest"
	"github.com/matzehuels/ziplock/pkg/tree"
)

// MaxManifestBytes bounds request bodies.
const MaxManifestBytes = 1 << 20

// Builder resolves a manifest into a tree. [resolve.Builder] implements it.
//
// [resolve.Builder]: github.com/matzehuels/ziplock/pkg/resolve.Builder
type Builder interface {
	Build(ctx context.Context, m *manifest.Manifest) (tree.Tree, error)
}

// Options configures a [Server].
type Options struct {
	Builder Builder        // Required
	Store   lockfile.Store // Lock persistence; lock routes answer 501 without it
	Logger  *log.Logger    // Request logging (optional)
	Metrics http.Handler   // Served at /metrics (default: promhttp.Handler())
	Timeout time.Duration  // Per-request resolution timeout (default: 2m)
}

// Server routes HTTP requests to a [Builder] and a [lockfile.Store].
type Server struct {
	builder Builder
	store   lockfile.Store
	logger  *log.Logger
	timeout time.Duration
	router  chi.Router
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	s := &Server{
		builder: opts.Builder,
		store:   opts.Store,
		logger:  opts.Logger,
		timeout: opts.Timeout,
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.timeout <= 0 {
		s.timeout = 2 * time.Minute
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/tree", s.handleTree)
		r.Post("/locks", s.handleCreateLock)
		r.Get("/locks/{id}", s.handleGetLock)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

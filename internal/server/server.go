// Package server exposes the archtower pipeline over HTTP.
//
// Every endpoint under /v1 takes a repository tree as its JSON body (the
// same document 'archtower analyze tree.json' reads) and answers with the
// pipeline output:
//
//	POST /v1/analyze     analysis JSON
//	POST /v1/nodes       filtered node list (?folder=, ?language=, ?type=)
//	POST /v1/flowchart   positioned flowchart JSON
//	POST /v1/dot         Graphviz source
//	POST /v1/svg         rendered SVG
//	GET  /healthz        build information
//
// Pipeline options are read from query parameters: max_file_size, exclude
// (repeatable), canvas_width, overlap_iterations, detailed and refresh.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/archtower/pkg/pipeline"
)

// DefaultMaxBodyBytes caps request bodies when Options leaves it unset.
const DefaultMaxBodyBytes = 32 << 20

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	// Runner executes the pipeline. Nil uses an uncached runner.
	Runner *pipeline.Runner

	// Defaults seeds the pipeline options of every request; query
	// parameters override them.
	Defaults pipeline.Options

	// MaxBodyBytes caps request bodies (default DefaultMaxBodyBytes).
	MaxBodyBytes int64

	Logger *log.Logger
}

// Server serves the pipeline over HTTP.
type Server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	maxBody  int64
	logger   *log.Logger
	router   chi.Router
}

// New creates a server with its routes registered.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		runner:   opts.Runner,
		defaults: opts.Defaults,
		maxBody:  opts.MaxBodyBytes,
		logger:   opts.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/nodes", s.handleNodes)
		r.Post("/flowchart", s.handleFlowchart)
		r.Post("/dot", s.handleRender(pipeline.FormatDOT))
		r.Post("/svg", s.handleRender(pipeline.FormatSVG))
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

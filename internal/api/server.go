// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost presentation boundary.
  - It is the composition root for the chi router.
  - Only this package and cmd/api import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/lexica/internal/platform/config"
	"github.com/taibuivan/lexica/internal/platform/constants"
	"github.com/taibuivan/lexica/internal/platform/middleware"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// RouteProvider is implemented by every domain handler set.
type RouteProvider interface {
	Routes() chi.Router
}

// # Handler Registry

// Handlers groups the HTTP handlers mounted by [NewServer].
type Handlers struct {
	// Liveness answers /health/live as long as the process runs.
	Liveness http.HandlerFunc

	// Readiness answers /health/ready once Postgres and Redis respond.
	Readiness http.HandlerFunc

	// Metrics exposes the Prometheus registry at /metrics.
	Metrics http.Handler

	// Auth serves the login, registration and logout forms.
	Auth RouteProvider

	// Corpus serves corpus registration, inspection and autocomplete.
	Corpus RouteProvider
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. The rate limiter janitor stops when ctx ends.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, observer middleware.RequestObserver, h Handlers) *Server {
	r := chi.NewRouter()
	limiter := middleware.NewRateLimiter(ctx, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst)

	// Authenticate runs before the logger so log lines carry the user id.
	r.Use(middleware.RequestID())
	r.Use(middleware.Authenticate(verifier, cfg.SecureCookies))
	r.Use(middleware.StructuredLogger(log))
	if observer != nil {
		r.Use(middleware.Instrument(observer))
	}
	r.Use(limiter.Middleware)
	r.Use(middleware.PanicRecovery())
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health/live", h.Liveness)
	r.Get("/health/ready", h.Readiness)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	// # Application
	r.Get("/", func(writer http.ResponseWriter, request *http.Request) {
		http.Redirect(writer, request, "/corpus/new", http.StatusSeeOther)
	})
	r.Mount("/auth", h.Auth.Routes())
	r.Mount("/corpus", h.Corpus.Routes())

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Copyright (c) 2026 VeriClass. All rights reserved.

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vericlass/vericlass/internal/core/announcement"
	"github.com/vericlass/vericlass/internal/core/attendance"
	"github.com/vericlass/vericlass/internal/core/course"
	"github.com/vericlass/vericlass/internal/identity"
	"github.com/vericlass/vericlass/internal/platform/config"
	"github.com/vericlass/vericlass/internal/platform/constants"
	"github.com/vericlass/vericlass/internal/platform/middleware"
)

// Server is the composition root of the API binary: the chi router, the
// shared middleware chain, and the configured [http.Server]. Only this
// package and cmd/api touch net/http server primitives.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// Handlers groups the domain handler sets the server mounts. Adding a
// domain means adding a field here and a Mount below, nothing else.
type Handlers struct {
	// Liveness serves /health and answers whenever the process is up.
	Liveness http.HandlerFunc

	// Readiness serves /ready and reflects backing-store health.
	Readiness http.HandlerFunc

	// Identity covers accounts, sessions, and one-time-code challenges.
	Identity *identity.Handler

	// Course covers the course catalogue and enrollment.
	Course *course.Handler

	// Announcement covers course notices.
	Announcement *announcement.Handler

	// Attendance covers attendance sessions and records.
	Attendance *attendance.Handler
}

// NewServer assembles the router. Middleware order matters: tracing and
// logging wrap everything, the timeout and rate limit fire before any
// handler work, and authentication runs before the route groups that
// depend on it.
func NewServer(ctx context.Context, cfg *config.API, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// Unauthenticated probes for the orchestrator.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/identity", h.Identity.Routes())
		api.Mount("/courses", h.Course.Routes())
		api.Mount("/announcements", h.Announcement.Routes())
		api.Mount("/attendance", h.Attendance.Routes())
	})

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

// ListenAndServe blocks serving requests until the server is shut down
// or fails.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests for up to timeout before closing.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

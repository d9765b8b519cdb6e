// Copyright (c) 2026 VeriClass. All rights reserved.

/*
Package gateway wires the session-validation core into a runnable BFF
server sitting between the browser and the rest of the platform.

Architecture:

  - /api/auth/*: Authentication endpoints served by the gateway itself.
  - /api/*: Reverse-proxied to the identity/attendance API with cookies
    translated into a bearer header.
  - Everything else: Passed through the session gate, then reverse-proxied
    to the frontend renderer.

Only this package and cmd/gateway import net/http server primitives.
*/
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vericlass/vericlass/internal/authgate"
	"github.com/vericlass/vericlass/internal/platform/config"
	"github.com/vericlass/vericlass/internal/platform/constants"
	"github.com/vericlass/vericlass/internal/platform/middleware"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server] for the gateway.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// Core groups the session-validation components the gateway is built from.
type Core struct {
	Classifier *authgate.Classifier
	Cache      *authgate.ValidationCache
	Codec      *authgate.TokenCodec
	Controller *authgate.Controller
	Backend    authgate.IdentityBackend
	Auth       *authgate.Handler
}

// # Server Initialization

// NewServer constructs the gateway router: middleware chain, auth
// endpoints, API proxy, and the gated frontend proxy.
func NewServer(context context.Context, cfg *config.Gateway, log *slog.Logger, core Core) (*Server, error) {
	apiTarget, err := url.Parse(cfg.IdentityBaseURL)
	if err != nil {
		return nil, err
	}
	frontendTarget, err := url.Parse(cfg.FrontendBaseURL)
	if err != nil {
		return nil, err
	}

	gate := authgate.NewGate(core.Classifier, core.Cache, core.Codec, core.Backend, authgate.GateOptions{
		LoginPath:    "/auth/login",
		ExpiryBuffer: cfg.TokenExpiryBuffer(),
	}, log)

	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", liveness)

	// # Authentication API
	// Served by the gateway itself; everything under /api/auth stays local.
	r.Mount("/api/auth", core.Auth.Routes())

	// # Backend API Proxy
	// Cookie-held tokens are promoted to a bearer header so the API keeps a
	// single authentication scheme.
	apiProxy := newProxy(apiTarget, log)
	r.Handle("/api/*", promoteBearer(core.Codec, apiProxy))

	// # Gated Frontend
	// Every remaining path flows through the session gate before reaching
	// the frontend renderer.
	frontendProxy := newProxy(frontendTarget, log)
	r.With(gate.Middleware()).Handle("/*", frontendProxy)

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
	}, nil
}

// # Proxy Plumbing

// newProxy builds a reverse proxy that reports upstream failures as 502
// through the structured logger instead of the default stderr print.
func newProxy(target *url.URL, log *slog.Logger) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(writer http.ResponseWriter, request *http.Request, err error) {
		log.ErrorContext(request.Context(), "proxy_upstream_failed",
			slog.String("target", target.Host),
			slog.String("path", request.URL.Path),
			slog.String("error", err.Error()),
		)
		writer.WriteHeader(http.StatusBadGateway)
	}
	return proxy
}

// promoteBearer copies the access-token cookie into an Authorization
// header for the proxied API request. The cookies themselves are stripped;
// the API never sees them.
func promoteBearer(codec *authgate.TokenCodec, next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if token, ok := codec.ReadAccess(request); ok && token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
		request.Header.Del("Cookie")
		next.ServeHTTP(writer, request)
	})
}

func liveness(writer http.ResponseWriter, _ *http.Request) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte(`{"status":"ok","app":"` + constants.AppName + `-gateway"}`))
}

// # Server Lifecycle

// ListenAndServe starts the gateway.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("gateway starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the gateway, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}

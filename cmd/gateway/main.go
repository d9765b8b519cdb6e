// Copyright (c) 2026 VeriClass. All rights reserved.

// Command gateway runs the VeriClass BFF gateway: the session-validation
// core, the local /api/auth surface, the API reverse proxy, and the page
// gate. It holds no database; every identity decision is delegated to
// the API service and cached.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vericlass/vericlass/internal/authgate"
	"github.com/vericlass/vericlass/internal/gateway"
	"github.com/vericlass/vericlass/internal/platform/config"
	"github.com/vericlass/vericlass/internal/platform/constants"
)

func main() {
	// Logger first, so even configuration failures come out as JSON.
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	log := slog.New(handler).With(slog.String("app", "vericlass-gateway"))
	slog.SetDefault(log)

	log.Info("[VeriClass] gateway_initializing")

	cfg, err := config.LoadGateway()
	must(log, err, "load configuration")

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("identity", cfg.IdentityBaseURL),
	)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	backend := authgate.NewHTTPBackend(cfg.IdentityBaseURL, cfg.RequestTimeout())
	cache := authgate.NewValidationCache(backend, authgate.CacheOptions{
		TTL:            cfg.CacheTTL(),
		FailureTTL:     cfg.FailureCacheTTL(),
		RequestTimeout: cfg.RequestTimeout(),
		MaxSize:        cfg.CacheMaxSize,
	}, log)

	codec := authgate.NewTokenCodec(authgate.CookieSettings{
		AccessName:    cfg.AccessTokenCookie,
		RefreshName:   cfg.RefreshTokenCookie,
		AccessMaxAge:  cfg.AccessTokenMaxAgeSeconds,
		RefreshMaxAge: cfg.RefreshTokenMaxAgeSecs,
		Secure:        cfg.IsProduction(),
	})
	classifier := authgate.NewClassifier(authgate.DefaultRouteTable())
	controller := authgate.NewController(backend, cache, codec, log)
	authHandler := authgate.NewHandler(controller, cache, codec, cfg.IsProduction())

	server, err := gateway.NewServer(rootCtx, cfg, log, gateway.Core{
		Classifier: classifier,
		Cache:      cache,
		Codec:      codec,
		Controller: controller,
		Backend:    backend,
		Auth:       authHandler,
	})
	must(log, err, "build gateway server")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("gateway_failed", slog.Any("error", err))
	}

	log.Info("gateway_draining", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("gateway_stopped")
}

// must terminates the process on a startup wiring error. Past startup,
// errors are always returned, never fatal.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}

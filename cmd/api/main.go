// Copyright (c) 2026 VeriClass. All rights reserved.

// Command api runs the VeriClass identity and attendance API server.
//
// Startup is strictly ordered: logger, configuration, PostgreSQL, Redis,
// migrations, token service, then the HTTP server with graceful
// shutdown. No business logic lives here; everything is explicit
// constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vericlass/vericlass/internal/api"
	"github.com/vericlass/vericlass/internal/core/announcement"
	"github.com/vericlass/vericlass/internal/core/attendance"
	"github.com/vericlass/vericlass/internal/core/course"
	"github.com/vericlass/vericlass/internal/identity"
	"github.com/vericlass/vericlass/internal/platform/config"
	"github.com/vericlass/vericlass/internal/platform/constants"
	"github.com/vericlass/vericlass/internal/platform/migration"
	pgstore "github.com/vericlass/vericlass/internal/platform/postgres"
	redisstore "github.com/vericlass/vericlass/internal/platform/redis"
	"github.com/vericlass/vericlass/internal/platform/sec"
)

const startupTimeout = 30 * time.Second

func main() {
	// Logger first, so even configuration failures come out as JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("[VeriClass] service_initializing")

	cfg, err := config.LoadAPI()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Bounded startup context: a wrong DSN should fail fast, not hang.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), startupTimeout)
	defer startupCancel()

	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("postgres_pool_closing")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("redis_client_closing")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error { return pgstore.Ping(context.Background(), pool) },
		CheckCache:    func() error { return redisstore.Ping(context.Background(), rdb) },
	}, log)

	// Domain wiring: repositories into services into handlers.
	identityService := identity.NewService(
		identity.NewUserRepository(pool),
		identity.NewSessionRepository(pool),
		identity.NewChallengeRepository(rdb),
		identity.NewResetTokenRepository(rdb),
		jwtSvc,
		&identity.LogCodeSender{Logger: log},
	)

	courseService := course.NewService(course.NewPostgresRepository(pool), log)
	announcementService := announcement.NewService(announcement.NewPostgresRepository(pool), log)
	attendanceService := attendance.NewService(attendance.NewPostgresRepository(pool), log)

	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Identity:     identity.NewHandler(identityService),
		Course:       course.NewHandler(courseService),
		Announcement: announcement.NewHandler(announcementService),
		Attendance:   attendance.NewHandler(attendanceService),
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	server := api.NewServer(rootCtx, cfg, log, jwtSvc, handlers)

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
		log.Error("server_failed", slog.Any("error", err))
	}

	log.Info("server_draining", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
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

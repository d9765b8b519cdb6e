// Copyright (c) 2026 VeriClass. All rights reserved.

// Package api wires the identity and core services into HTTP handlers,
// including the liveness and readiness probes the deployment relies on.
package api

import (
	"log/slog"
	"net/http"

	"github.com/vericlass/vericlass/internal/platform/respond"
)

// HealthDependencies holds the backing-store pingers probed by /ready.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase func() error

	// CheckCache pings the Redis client.
	CheckCache func() error
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health. It answers as long as the process is up,
// without touching Postgres or Redis.
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

type dependencyStatus struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// readiness handles GET /ready. Any failing dependency turns the whole
// response into a 503 so the load balancer stops routing to this replica.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	probes := []struct {
		name string
		ping func() error
	}{
		{name: "postgres", ping: handler.dependencies.CheckDatabase},
		{name: "redis", ping: handler.dependencies.CheckCache},
	}

	statuses := make([]dependencyStatus, 0, len(probes))
	isSystemReady := true

	for _, probe := range probes {
		if probe.ping == nil {
			continue
		}
		status := dependencyStatus{Name: probe.name, IsOK: true}
		if err := probe.ping(); err != nil {
			status.IsOK = false
			status.Error = err.Error()
			isSystemReady = false
			handler.logger.Error("readiness_check_failed",
				slog.String("dependency", probe.name),
				slog.Any("error", err),
			)
		}
		statuses = append(statuses, status)
	}

	summary := "ready"
	httpStatus := http.StatusOK
	if !isSystemReady {
		summary = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, respond.SuccessEnvelope{Data: map[string]any{
		"status": summary,
		"checks": statuses,
	}})
}

// Copyright (c) 2026 VeriClass. All rights reserved.

// Package ctxutil reads and writes the request-scoped values (request ID,
// logger, authenticated user) that the middleware chain threads through
// [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/vericlass/vericlass/internal/platform/ctxkey"
	"github.com/vericlass/vericlass/internal/platform/sec"
)

// WithRequestID attaches the request ID assigned by the tracing middleware.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID returns the request ID, or "" when the request never went
// through the tracing middleware.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// WithLogger attaches a request-scoped logger, usually one already carrying
// the request ID attribute.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger returns the request-scoped logger, falling back to
// [slog.Default] so callers never need a nil check.
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithAuthUser attaches the verified token claims for the current caller.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// GetAuthUser returns the caller's [*sec.AuthClaims], or nil for
// unauthenticated requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	return claims
}

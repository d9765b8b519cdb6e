// Copyright (c) 2026 VeriClass. All rights reserved.

// Package ctxkey holds the typed context keys the middleware chain uses
// for per-request values. The unexported key type guarantees no other
// package can collide with these entries, since context lookup matches
// on both type and value.
package ctxkey

type key string

const (
	// KeyRequestID stores the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyUser stores the authenticated caller's token claims.
	KeyUser key = "user"

	// KeyLogger stores the request-scoped slog logger.
	KeyLogger key = "logger"
)

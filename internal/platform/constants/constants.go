// Copyright (c) 2026 VeriClass. All rights reserved.

// Package constants centralizes the cross-layer values both binaries
// share: server timeouts, rate-limit tuning, header and JSON field
// names, database schema names, and the Redis key taxonomy. Anything
// that appears in more than one package lives here instead of being
// repeated as a literal.
package constants

import "time"

// # Metadata

const (
	AppName    = "vericlass"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout bounds reading an entire request body.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout bounds writing a response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is how long a keep-alive connection may sit idle.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout bounds reading the request headers alone.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the end-to-end deadline for one request.
	// The Postgres statement timeout is derived from it.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is the grace period for in-flight requests when
	// the process receives SIGTERM.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the sustained per-IP request rate.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the token-bucket burst size per IP.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often idle IP buckets are swept.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is the idle time after which a bucket is
	// dropped from memory.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the 'iss' claim stamped into every token.
	AuthIssuer = "vericlass.app"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldSuccess = "success"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaCore  = "core"
	SchemaUsers = "users"
)

// # Redis Key Prefixes

const (
	RedisPrefixLoginOTP    = "identity:otp:login:"
	RedisPrefixRegisterOTP = "identity:otp:register:"
	RedisPrefixResetToken  = "identity:reset_token:"
)

// Copyright (c) 2026 VeriClass. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into strongly-typed
Go structs, providing early validation and default values.

Usage:

	cfg, err := config.LoadAPI()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, cache) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the services are Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # API Service Configuration

// API holds runtime configuration for the identity/attendance API server.
type API struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Cryptographic keys for identity signing
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Gateway Configuration

// Gateway holds runtime configuration for the BFF gateway in front of the
// web frontend. Every knob of the session-validation core is overridable;
// the defaults below are this deployment's configuration, not protocol
// constants.
type Gateway struct {

	// Server settings
	ServerPort  string `env:"GATEWAY_PORT" envDefault:"3000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`

	// Upstreams
	IdentityBaseURL string `env:"IDENTITY_BASE_URL,required"`
	FrontendBaseURL string `env:"FRONTEND_BASE_URL,required"`

	// Validation cache tuning
	CacheTTLMS        int `env:"CACHE_TTL_MS"         envDefault:"60000"`
	FailureCacheTTLMS int `env:"FAILURE_CACHE_TTL_MS" envDefault:"10000"`
	CacheMaxSize      int `env:"CACHE_MAX_SIZE"       envDefault:"1000"`

	// RequestTimeoutMS bounds every call to the identity backend.
	RequestTimeoutMS int `env:"REQUEST_TIMEOUT_MS" envDefault:"5000"`

	// TokenExpiryBufferSeconds triggers a refresh this many seconds before
	// the access token actually expires, not exactly at expiry.
	TokenExpiryBufferSeconds int `env:"TOKEN_EXPIRY_BUFFER_SECONDS" envDefault:"30"`

	// Cookie custody
	AccessTokenCookie        string `env:"ACCESS_TOKEN_COOKIE"  envDefault:"access_token"`
	RefreshTokenCookie       string `env:"REFRESH_TOKEN_COOKIE" envDefault:"refresh_token"`
	AccessTokenMaxAgeSeconds int    `env:"ACCESS_TOKEN_MAX_AGE_SECONDS"  envDefault:"604800"`
	RefreshTokenMaxAgeSecs   int    `env:"REFRESH_TOKEN_MAX_AGE_SECONDS" envDefault:"2592000"`
}

// # Configuration Loading

// LoadAPI parses environment variables into an [API] struct.
func LoadAPI() (*API, error) {
	cfg := &API{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// LoadGateway parses environment variables into a [Gateway] struct.
func LoadGateway() (*Gateway, error) {
	cfg := &Gateway{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// # Environment Helpers

// IsDevelopment reports whether the API server is running in development mode.
func (c *API) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the API server is running in production mode.
func (c *API) IsProduction() bool {
	return c.Environment == "production"
}

// IsProduction reports whether the gateway is running in production mode.
// Cookies carry the Secure attribute only in production.
func (c *Gateway) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment reports whether the gateway is running in development mode.
func (c *Gateway) IsDevelopment() bool {
	return c.Environment == "development"
}

// # Duration Accessors

// CacheTTL returns the positive-verdict TTL as a [time.Duration].
func (c *Gateway) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMS) * time.Millisecond
}

// FailureCacheTTL returns the negative-verdict TTL as a [time.Duration].
func (c *Gateway) FailureCacheTTL() time.Duration {
	return time.Duration(c.FailureCacheTTLMS) * time.Millisecond
}

// RequestTimeout returns the backend call deadline as a [time.Duration].
func (c *Gateway) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// TokenExpiryBuffer returns the pre-expiry refresh window as a [time.Duration].
func (c *Gateway) TokenExpiryBuffer() time.Duration {
	return time.Duration(c.TokenExpiryBufferSeconds) * time.Second
}

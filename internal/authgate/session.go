// Copyright (c) 2026 VeriClass. All rights reserved.

package authgate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vericlass/vericlass/internal/platform/ctxkey"
	"github.com/vericlass/vericlass/internal/platform/sec"
)

// # Session Gate

// GateOptions tunes the per-request session gate.
type GateOptions struct {
	// LoginPath is where unauthenticated requests for protected pages are
	// redirected, carrying the original path in ?redirect=.
	LoginPath string

	// ExpiryBuffer triggers a best-effort token refresh when the access
	// token expires within this window.
	ExpiryBuffer time.Duration
}

// Gate classifies every page request and enforces the session policy:
// protected pages demand a valid access token, auth-only pages bounce
// authenticated users to their dashboard, everything else passes through.
type Gate struct {
	classifier *Classifier
	cache      *ValidationCache
	codec      *TokenCodec
	backend    IdentityBackend
	options    GateOptions
	logger     *slog.Logger
	parser     *jwt.Parser
}

// NewGate constructs the session gate middleware.
func NewGate(classifier *Classifier, cache *ValidationCache, codec *TokenCodec, backend IdentityBackend, options GateOptions, logger *slog.Logger) *Gate {
	if options.LoginPath == "" {
		options.LoginPath = "/auth/login"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		classifier: classifier,
		cache:      cache,
		codec:      codec,
		backend:    backend,
		options:    options,
		logger:     logger,
		parser:     jwt.NewParser(),
	}
}

/*
Middleware wraps page traffic with the session policy.

Description: Each request is classified by path. Excluded and public paths
pass through untouched; a present-but-valid session on a public path still
gets the user injected so downstream rendering can personalise. Protected
paths without a valid session redirect to the login page with the original
path preserved. Auth-only paths with a valid session redirect to the
role's dashboard. Transport failures during validation fail closed: the
request is treated as unauthenticated, never granted.

Returns:
  - func(http.Handler) http.Handler: A chi-compatible middleware.
*/
func (gate *Gate) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			class := gate.classifier.Classify(request.URL.Path)
			if class == RouteExcluded {
				next.ServeHTTP(writer, request)
				return
			}

			user := gate.resolve(writer, request)

			switch class {
			case RouteProtected:
				if user == nil {
					gate.redirectToLogin(writer, request)
					return
				}
			case RouteAuthOnly:
				if user != nil {
					http.Redirect(writer, request, sec.UserRole(user.Role).DashboardPath(), http.StatusFound)
					return
				}
			}

			if user != nil {
				request = request.WithContext(WithUser(request.Context(), user))
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// resolve validates the request's access token, refreshing it first when it
// is about to expire. A nil return means no usable session.
func (gate *Gate) resolve(writer http.ResponseWriter, request *http.Request) *User {
	accessToken, ok := gate.codec.ReadAccess(request)
	if !ok || accessToken == "" {
		return nil
	}

	if gate.nearExpiry(accessToken) {
		if refreshed := gate.tryRefresh(writer, request, accessToken); refreshed != "" {
			accessToken = refreshed
		}
	}

	verdict, err := gate.cache.Validate(request.Context(), accessToken)
	if err != nil && !errors.Is(err, ErrInvalidToken) {
		// Fail closed: a backend outage downgrades to unauthenticated.
		gate.logger.WarnContext(request.Context(), "session_validation_degraded",
			slog.String("error", err.Error()),
		)
		return nil
	}
	if !verdict.Valid {
		return nil
	}
	return verdict.User
}

// nearExpiry inspects the token's exp claim without verifying the
// signature; the verdict still comes from the backend, this only decides
// whether a refresh is worth attempting.
func (gate *Gate) nearExpiry(accessToken string) bool {
	if gate.options.ExpiryBuffer <= 0 {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := gate.parser.ParseUnverified(accessToken, claims); err != nil {
		return false
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return false
	}
	return time.Until(expiry.Time) <= gate.options.ExpiryBuffer
}

// tryRefresh rotates the token pair best-effort. On any failure the stale
// access token continues to be used; validation decides its fate.
func (gate *Gate) tryRefresh(writer http.ResponseWriter, request *http.Request, staleAccess string) string {
	refreshToken, ok := gate.codec.ReadRefresh(request)
	if !ok || refreshToken == "" {
		return ""
	}

	pair, err := gate.backend.Refresh(request.Context(), refreshToken)
	if err != nil {
		gate.logger.WarnContext(request.Context(), "session_refresh_failed",
			slog.String("error", err.Error()),
		)
		return ""
	}

	if err := gate.codec.Persist(writer, *pair); err != nil {
		return ""
	}

	// The old access token must not keep serving from the cache once its
	// successor exists.
	gate.cache.Invalidate(staleAccess)
	return pair.AccessToken
}

func (gate *Gate) redirectToLogin(writer http.ResponseWriter, request *http.Request) {
	target := gate.options.LoginPath + "?redirect=" + url.QueryEscape(request.URL.Path)
	http.Redirect(writer, request, target, http.StatusFound)
}

// # Context Plumbing

// WithUser stores the validated session user on the context.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// UserFromContext retrieves the session user injected by the gate, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(ctxkey.KeyUser).(*User)
	return user, ok && user != nil
}

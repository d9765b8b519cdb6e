// Copyright (c) 2026 VeriClass. All rights reserved.

// Package requestutil extracts typed data from incoming HTTP requests:
// JSON bodies, chi URL parameters, and the authenticated caller. Handlers
// go through these helpers so malformed input and missing authentication
// always map to the same error codes.
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vericlass/vericlass/internal/platform/apperr"
	"github.com/vericlass/vericlass/internal/platform/ctxutil"
	"github.com/vericlass/vericlass/internal/platform/sec"
	"github.com/vericlass/vericlass/internal/platform/validate"
)

// DecodeJSON decodes the request body into target, translating any
// decoding failure into validate.ErrInvalidJSON so the handler can pass
// it straight to respond.Error.
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param returns the named chi URL parameter, or "" when the route has no
// such parameter.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Claims returns the caller's token claims, or nil for anonymous
// requests. Use on routes where authentication is optional.
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

// RequiredClaims returns the caller's token claims, or
// apperr.Unauthorized when the request carries no verified identity.
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

// RequiredUserID returns the authenticated caller's user ID, or
// apperr.Unauthorized for anonymous requests.
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// Copyright (c) 2026 VeriClass. All rights reserved.

// Package apperr is the error taxonomy for the whole platform. Every
// error that crosses a service boundary is an [*AppError] carrying a
// stable machine-readable code, the HTTP status it maps to, and a
// client-safe message; respond.Error turns it into the wire envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type of the VeriClass API.
//
// Cause exists for server-side logs only and never reaches a client, so
// internal details (SQL text, upstream addresses) cannot leak through
// error responses.
type AppError struct {
	// Code is the stable machine-readable identifier, e.g. "NOT_FOUND".
	Code string `json:"code"`
	// Message is safe to show to the client.
	Message string `json:"error"`
	// HTTPStatus is the response status this error maps to.
	HTTPStatus int `json:"-"`
	// Cause is the wrapped underlying error, for logging only.
	Cause error `json:"-"`
	// Details lists per-field failures on VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap exposes the cause chain to [errors.Is] and [errors.As].
func (e *AppError) Unwrap() error { return e.Cause }

func newError(code string, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// # Client Errors (4xx)

// NotFound builds a 404 for a named resource, e.g.
// apperr.NotFound("Course") reads "Course not found".
func NotFound(resource string) *AppError {
	return newError("NOT_FOUND", http.StatusNotFound, resource+" not found")
}

// Unauthorized builds a generic 401.
func Unauthorized(msg string) *AppError {
	return newError("UNAUTHORIZED", http.StatusUnauthorized, msg)
}

// InvalidCredentials builds a 401 with a dedicated code so the login
// form can tell bad credentials apart from an expired session.
func InvalidCredentials() *AppError {
	return newError("INVALID_CREDENTIALS", http.StatusUnauthorized, "Invalid login credentials")
}

// InvalidOTP builds a 401 for a wrong or expired one-time code.
func InvalidOTP() *AppError {
	return newError("INVALID_OR_EXPIRED_OTP", http.StatusUnauthorized, "The one-time code is invalid or has expired")
}

// InvalidToken builds a 401 for a token that failed validation.
func InvalidToken() *AppError {
	return newError("INVALID_TOKEN", http.StatusUnauthorized, "Invalid or expired token")
}

// Forbidden builds a 403.
func Forbidden(msg string) *AppError {
	return newError("FORBIDDEN", http.StatusForbidden, msg)
}

// Conflict builds a 409 for duplicates and unique-constraint hits.
func Conflict(msg string) *AppError {
	return newError("CONFLICT", http.StatusConflict, msg)
}

// ValidationError builds a 400 with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	err := newError("VALIDATION_ERROR", http.StatusBadRequest, msg)
	err.Details = details
	return err
}

// RateLimited builds a 429 naming the retry window.
func RateLimited(retryAfterSeconds int) *AppError {
	return newError("RATE_LIMITED", http.StatusTooManyRequests,
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
}

// Unprocessable builds a 422 for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return newError("UNPROCESSABLE", http.StatusUnprocessableEntity, msg)
}

// # Server Errors (5xx)

// Internal builds a 500 wrapping an unexpected server-side error. The
// cause goes to the logs, never to the client.
func Internal(cause error) *AppError {
	err := newError("INTERNAL_ERROR", http.StatusInternalServerError, "An unexpected error occurred")
	err.Cause = cause
	return err
}

// ServiceUnavailable builds a 503 for an unreachable upstream.
func ServiceUnavailable(msg string) *AppError {
	return newError("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, msg)
}

// GatewayTimeout builds a 504 for an upstream deadline overrun.
func GatewayTimeout(msg string) *AppError {
	return newError("GATEWAY_TIMEOUT", http.StatusGatewayTimeout, msg)
}

// # Helpers

// IsAppError reports whether err's chain contains an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain, or nil.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// CodeOf returns err's machine-readable code, falling back to
// "INTERNAL_ERROR" for foreign errors.
func CodeOf(err error) string {
	if ae := As(err); ae != nil {
		return ae.Code
	}
	return "INTERNAL_ERROR"
}

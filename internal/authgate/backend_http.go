// Copyright (c) 2026 VeriClass. All rights reserved.

package authgate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// # HTTP Identity Client

// HTTPBackend talks to the identity service over its JSON API and
// implements [IdentityBackend].
//
// Wire errors are translated at this boundary: response codes become the
// package sentinels, transport failures become [ErrBackendTimeout] or
// [ErrBackendUnreachable]. Nothing above this layer sees raw HTTP.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBackend constructs a client for the identity service at baseURL.
// The timeout bounds every call; callers may tighten it further per request
// through their context.
func NewHTTPBackend(baseURL string, timeout time.Duration) *HTTPBackend {
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// authPayload is the identity service's combined login/registration result.
type authPayload struct {
	RequiresOTP  bool   `json:"requiresOTP"`
	Email        string `json:"email"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

func (payload *authPayload) toResult() *AuthResult {
	result := &AuthResult{
		RequiresOTP: payload.RequiresOTP,
		MaskedEmail: payload.Email,
		User:        payload.User,
	}
	if payload.AccessToken != "" && payload.RefreshToken != "" {
		result.Tokens = &TokenPair{
			AccessToken:  payload.AccessToken,
			RefreshToken: payload.RefreshToken,
		}
	}
	return result
}

func (backend *HTTPBackend) Authenticate(ctx context.Context, identifier, password string) (*AuthResult, error) {
	var payload authPayload
	err := backend.post(ctx, "/api/v1/identity/login", map[string]string{
		"identifier": identifier,
		"password":   password,
	}, &payload)
	if err != nil {
		return nil, err
	}
	return payload.toResult(), nil
}

func (backend *HTTPBackend) VerifyLoginOTP(ctx context.Context, identifier, code string) (*AuthResult, error) {
	var payload authPayload
	err := backend.post(ctx, "/api/v1/identity/login/verify-otp", map[string]string{
		"identifier": identifier,
		"code":       code,
	}, &payload)
	if err != nil {
		return nil, err
	}
	return payload.toResult(), nil
}

func (backend *HTTPBackend) RegisterInitiate(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	var payload authPayload
	err := backend.post(ctx, "/api/v1/identity/register", map[string]string{
		"username": input.Username,
		"email":    input.Email,
		"password": input.Password,
		"fullName": input.FullName,
		"role":     input.Role,
	}, &payload)
	if err != nil {
		return nil, err
	}
	return payload.toResult(), nil
}

func (backend *HTTPBackend) VerifyRegisterOTP(ctx context.Context, identifier, code string) (*AuthResult, error) {
	var payload authPayload
	err := backend.post(ctx, "/api/v1/identity/register/verify-otp", map[string]string{
		"identifier": identifier,
		"code":       code,
	}, &payload)
	if err != nil {
		return nil, err
	}
	return payload.toResult(), nil
}

func (backend *HTTPBackend) ValidateToken(ctx context.Context, accessToken string) (*User, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, backend.baseURL+"/api/v1/identity/me", nil)
	if err != nil {
		return nil, fmt.Errorf("build validate request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+accessToken)

	var user User
	if err := backend.do(request, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (backend *HTTPBackend) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var payload authPayload
	err := backend.post(ctx, "/api/v1/identity/refresh", map[string]string{
		"refreshToken": refreshToken,
	}, &payload)
	if err != nil {
		return nil, err
	}
	if payload.AccessToken == "" || payload.RefreshToken == "" {
		return nil, ErrBackendUnreachable
	}
	return &TokenPair{AccessToken: payload.AccessToken, RefreshToken: payload.RefreshToken}, nil
}

func (backend *HTTPBackend) Revoke(ctx context.Context, refreshToken string) error {
	return backend.post(ctx, "/api/v1/identity/logout", map[string]string{
		"refreshToken": refreshToken,
	}, nil)
}

func (backend *HTTPBackend) RequestPasswordReset(ctx context.Context, email string) error {
	return backend.post(ctx, "/api/v1/identity/forgot-password", map[string]string{
		"email": email,
	}, nil)
}

func (backend *HTTPBackend) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	return backend.post(ctx, "/api/v1/identity/reset-password", map[string]string{
		"token":       resetToken,
		"newPassword": newPassword,
	}, nil)
}

// # Wire Plumbing

// successEnvelope mirrors the identity service's success shape.
type successEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// errorEnvelope mirrors the identity service's error shape.
type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (backend *HTTPBackend) post(ctx context.Context, path string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, backend.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	request.Header.Set("Content-Type", "application/json")

	return backend.do(request, out)
}

func (backend *HTTPBackend) do(request *http.Request, out any) error {
	response, err := backend.client.Do(request)
	if err != nil {
		if isTimeout(err) {
			return ErrBackendTimeout
		}
		return ErrBackendUnreachable
	}
	defer response.Body.Close()

	// Bounded read; identity responses are small.
	raw, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		if isTimeout(err) {
			return ErrBackendTimeout
		}
		return ErrBackendUnreachable
	}

	if response.StatusCode >= 400 {
		return decodeWireError(response.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	var envelope successEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode identity response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode identity response data: %w", err)
	}
	return nil
}

// decodeWireError maps the identity service's error codes onto the package
// sentinels so callers compare with [errors.Is] instead of inspecting HTTP.
func decodeWireError(statusCode int, raw []byte) error {
	var envelope errorEnvelope
	_ = json.Unmarshal(raw, &envelope)

	switch envelope.Code {
	case "INVALID_CREDENTIALS":
		return ErrInvalidCredentials
	case "INVALID_OR_EXPIRED_OTP":
		return ErrInvalidOTP
	case "INVALID_TOKEN":
		return ErrInvalidToken
	}

	// 5xx from the identity service is indistinguishable from it being
	// down, as far as session policy goes.
	if statusCode >= 500 {
		return ErrBackendUnreachable
	}
	if statusCode == http.StatusUnauthorized {
		return ErrInvalidToken
	}
	return fmt.Errorf("identity service rejected request: %s (%d)", envelope.Error, statusCode)
}

// isTimeout reports whether err is a deadline-style failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Copyright (c) 2026 VeriClass. All rights reserved.

package authgate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vericlass/vericlass/internal/authgate"
)

/*
TestHTTPBackend_Authenticate tests both shapes of the login exchange and
the wire-error translation.
*/
func TestHTTPBackend_Authenticate(t *testing.T) {
	t.Run("challenge", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/v1/identity/login", request.URL.Path)
			assert.Equal(t, http.MethodPost, request.Method)

			var body map[string]string
			assert.NoError(t, json.NewDecoder(request.Body).Decode(&body))
			assert.Equal(t, "yomira", body["identifier"])

			writer.Header().Set("Content-Type", "application/json")
			_, _ = writer.Write([]byte(`{"data":{"requiresOTP":true,"email":"y*****@vericlass.edu"}}`))
		}))
		defer server.Close()

		backend := authgate.NewHTTPBackend(server.URL, 5*time.Second)
		result, err := backend.Authenticate(context.Background(), "yomira", "hunter2pass")
		require.NoError(t, err)
		assert.True(t, result.RequiresOTP)
		assert.Equal(t, "y*****@vericlass.edu", result.MaskedEmail)
		assert.Nil(t, result.Tokens)
	})

	t.Run("single_step_tokens", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			_, _ = writer.Write([]byte(`{"data":{
				"accessToken":"access-value",
				"refreshToken":"refresh-value",
				"user":{"id":"u1","username":"yomira","email":"yomira@vericlass.edu","role":"student"}
			}}`))
		}))
		defer server.Close()

		backend := authgate.NewHTTPBackend(server.URL, 5*time.Second)
		result, err := backend.Authenticate(context.Background(), "yomira", "hunter2pass")
		require.NoError(t, err)
		assert.False(t, result.RequiresOTP)
		require.NotNil(t, result.Tokens)
		assert.Equal(t, "access-value", result.Tokens.AccessToken)
		require.NotNil(t, result.User)
		assert.Equal(t, "student", result.User.Role)
	})

	t.Run("invalid_credentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"error":"Invalid identifier or password","code":"INVALID_CREDENTIALS"}`))
		}))
		defer server.Close()

		backend := authgate.NewHTTPBackend(server.URL, 5*time.Second)
		_, err := backend.Authenticate(context.Background(), "yomira", "wrong")
		assert.ErrorIs(t, err, authgate.ErrInvalidCredentials)
	})
}

/*
TestHTTPBackend_ValidateToken tests the bearer-token validation call and
its negative verdicts.
*/
func TestHTTPBackend_ValidateToken(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/v1/identity/me", request.URL.Path)
			assert.Equal(t, "Bearer access-value", request.Header.Get("Authorization"))

			writer.Header().Set("Content-Type", "application/json")
			_, _ = writer.Write([]byte(`{"data":{"id":"u1","username":"yomira","role":"student"}}`))
		}))
		defer server.Close()

		backend := authgate.NewHTTPBackend(server.URL, 5*time.Second)
		user, err := backend.ValidateToken(context.Background(), "access-value")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("negative_verdicts", func(t *testing.T) {
		tests := []struct {
			name   string
			status int
			body   string
		}{
			{"explicit_code", http.StatusUnauthorized, `{"error":"Invalid token","code":"INVALID_TOKEN"}`},
			{"bare_401", http.StatusUnauthorized, `{"error":"Authentication required","code":"UNAUTHORIZED"}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
					writer.Header().Set("Content-Type", "application/json")
					writer.WriteHeader(tt.status)
					_, _ = writer.Write([]byte(tt.body))
				}))
				defer server.Close()

				backend := authgate.NewHTTPBackend(server.URL, 5*time.Second)
				_, err := backend.ValidateToken(context.Background(), "bad-token")
				assert.ErrorIs(t, err, authgate.ErrInvalidToken)
			})
		}
	})
}

/*
TestHTTPBackend_TransportTranslation tests that service outages and
deadline overruns surface as the transport sentinels, never as raw errors.
*/
func TestHTTPBackend_TransportTranslation(t *testing.T) {
	t.Run("server_error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		backend := authgate.NewHTTPBackend(server.URL, 5*time.Second)
		_, err := backend.ValidateToken(context.Background(), "access-value")
		assert.ErrorIs(t, err, authgate.ErrBackendUnreachable)
	})

	t.Run("connection_refused", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close() // nothing listening anymore

		backend := authgate.NewHTTPBackend(server.URL, 5*time.Second)
		_, err := backend.ValidateToken(context.Background(), "access-value")
		assert.ErrorIs(t, err, authgate.ErrBackendUnreachable)
	})

	t.Run("deadline_overrun", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			select {
			case <-release:
			case <-request.Context().Done():
			}
		}))
		defer func() {
			close(release)
			server.Close()
		}()

		backend := authgate.NewHTTPBackend(server.URL, 5*time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := backend.ValidateToken(ctx, "access-value")
		assert.ErrorIs(t, err, authgate.ErrBackendTimeout)
	})
}

/*
TestHTTPBackend_Refresh tests rotation and its failure shape.
*/
func TestHTTPBackend_Refresh(t *testing.T) {
	t.Run("rotated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/v1/identity/refresh", request.URL.Path)

			var body map[string]string
			assert.NoError(t, json.NewDecoder(request.Body).Decode(&body))
			assert.Equal(t, "refresh-value", body["refreshToken"])

			writer.Header().Set("Content-Type", "application/json")
			_, _ = writer.Write([]byte(`{"data":{"accessToken":"new-access","refreshToken":"new-refresh"}}`))
		}))
		defer server.Close()

		backend := authgate.NewHTTPBackend(server.URL, 5*time.Second)
		pair, err := backend.Refresh(context.Background(), "refresh-value")
		require.NoError(t, err)
		assert.Equal(t, "new-access", pair.AccessToken)
		assert.Equal(t, "new-refresh", pair.RefreshToken)
	})

	t.Run("revoked_token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"error":"Invalid token","code":"INVALID_TOKEN"}`))
		}))
		defer server.Close()

		backend := authgate.NewHTTPBackend(server.URL, 5*time.Second)
		_, err := backend.Refresh(context.Background(), "revoked-value")
		assert.ErrorIs(t, err, authgate.ErrInvalidToken)
	})
}

/*
TestHTTPBackend_Revoke tests that logout tolerates an empty response body.
*/
func TestHTTPBackend_Revoke(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/v1/identity/logout", request.URL.Path)
		writer.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	backend := authgate.NewHTTPBackend(server.URL, 5*time.Second)
	assert.NoError(t, backend.Revoke(context.Background(), "refresh-value"))
}

// Copyright (c) 2026 VeriClass. All rights reserved.

package authgate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vericlass/vericlass/internal/authgate"
)

func newTestHandler(backend authgate.IdentityBackend) (*authgate.Handler, *authgate.ValidationCache) {
	controller, cache, codec := newTestController(backend)
	return authgate.NewHandler(controller, cache, codec, false), cache
}

func postJSON(t *testing.T, router http.Handler, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeErrorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Code
}

func requireSuccessBody(t *testing.T, recorder *httptest.ResponseRecorder) {
	t.Helper()
	var envelope struct {
		Data struct {
			Success bool `json:"success"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.True(t, envelope.Data.Success)
}

/*
TestHandler_SetTokens tests the out-of-band token persistence endpoint:
a complete pair lands as cookies with a success body, a partial pair is a
400 with no cookie written.
*/
func TestHandler_SetTokens(t *testing.T) {
	t.Run("complete_pair", func(t *testing.T) {
		handler, _ := newTestHandler(&fakeBackend{})
		router := handler.Routes()

		recorder := postJSON(t, router, "/set-tokens",
			`{"accessToken":"access-value","refreshToken":"refresh-value"}`)

		assert.Equal(t, http.StatusOK, recorder.Code)
		requireSuccessBody(t, recorder)
		cookies := recorder.Result().Cookies()
		require.Len(t, cookies, 2)
		assert.Equal(t, "access-value", cookieByName(t, cookies, "access_token").Value)
		assert.Equal(t, "refresh-value", cookieByName(t, cookies, "refresh_token").Value)
	})

	t.Run("partial_pair_rejected", func(t *testing.T) {
		bodies := []struct {
			name string
			body string
		}{
			{"missing_refresh", `{"accessToken":"access-value"}`},
			{"missing_access", `{"refreshToken":"refresh-value"}`},
			{"empty_body", `{}`},
		}

		for _, tt := range bodies {
			t.Run(tt.name, func(t *testing.T) {
				handler, _ := newTestHandler(&fakeBackend{})
				recorder := postJSON(t, handler.Routes(), "/set-tokens", tt.body)

				assert.Equal(t, http.StatusBadRequest, recorder.Code)
				assert.Equal(t, "TOKEN_MISSING", decodeErrorCode(t, recorder))
				assert.Empty(t, recorder.Result().Cookies(), "a partial pair must not write any cookie")
			})
		}
	})

	t.Run("replaced_token_leaves_cache", func(t *testing.T) {
		backend := &validatingBackend{user: &authgate.User{ID: "u1"}}
		handler, cache := newTestHandler(backend)

		// Seed a verdict for the token about to be replaced.
		_, err := cache.Validate(context.Background(), "old-access")
		require.NoError(t, err)
		require.Equal(t, 1, cache.Len())

		recorder := postJSON(t, handler.Routes(), "/set-tokens",
			`{"accessToken":"new-access","refreshToken":"new-refresh"}`,
			&http.Cookie{Name: "access_token", Value: "old-access"})

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, 0, cache.Len())
	})
}

/*
TestHandler_ClearTokens tests that the clearing endpoint expires both
cookies and answers with a success body without consulting the backend.
*/
func TestHandler_ClearTokens(t *testing.T) {
	handler, _ := newTestHandler(&fakeBackend{})

	recorder := postJSON(t, handler.Routes(), "/clear-tokens", "",
		&http.Cookie{Name: "access_token", Value: "access-value"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	requireSuccessBody(t, recorder)
	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, cookie := range cookies {
		assert.Equal(t, -1, cookie.MaxAge)
		assert.Empty(t, cookie.Value)
	}
}

/*
TestHandler_Login tests the credential phase over HTTP: validation,
challenge issuance with the flow cookie, and single-step authentication.
*/
func TestHandler_Login(t *testing.T) {
	t.Run("missing_fields", func(t *testing.T) {
		handler, _ := newTestHandler(&fakeBackend{})
		recorder := postJSON(t, handler.Routes(), "/login", `{"identifier":"yomira"}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("challenge_sets_flow_cookie", func(t *testing.T) {
		backend := &fakeBackend{authenticateResult: &authgate.AuthResult{
			RequiresOTP: true,
			MaskedEmail: "y*****@vericlass.edu",
		}}
		handler, _ := newTestHandler(backend)

		recorder := postJSON(t, handler.Routes(), "/login",
			`{"identifier":"yomira","password":"hunter2pass"}`)

		require.Equal(t, http.StatusOK, recorder.Code)

		var envelope struct {
			Data struct {
				RequiresOTP bool   `json:"requiresOTP"`
				Email       string `json:"email"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.True(t, envelope.Data.RequiresOTP)
		assert.Equal(t, "y*****@vericlass.edu", envelope.Data.Email)

		flowCookie := cookieByName(t, recorder.Result().Cookies(), "auth_flow")
		assert.NotEmpty(t, flowCookie.Value)
		assert.Equal(t, "/api/auth", flowCookie.Path)
		assert.True(t, flowCookie.HttpOnly)
	})

	t.Run("single_step_session", func(t *testing.T) {
		backend := &fakeBackend{authenticateResult: sessionResult()}
		handler, _ := newTestHandler(backend)

		recorder := postJSON(t, handler.Routes(), "/login",
			`{"identifier":"yomira","password":"hunter2pass"}`)

		require.Equal(t, http.StatusOK, recorder.Code)

		var envelope struct {
			Data struct {
				User     *authgate.User `json:"user"`
				Redirect string         `json:"redirect"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		require.NotNil(t, envelope.Data.User)
		assert.Equal(t, "yomira", envelope.Data.User.Username)
		assert.Equal(t, "/student", envelope.Data.Redirect)

		cookies := recorder.Result().Cookies()
		assert.Equal(t, "access-value", cookieByName(t, cookies, "access_token").Value)
		assert.Equal(t, "refresh-value", cookieByName(t, cookies, "refresh_token").Value)
	})

	t.Run("bad_credentials", func(t *testing.T) {
		handler, _ := newTestHandler(&fakeBackend{authenticateErr: authgate.ErrInvalidCredentials})
		recorder := postJSON(t, handler.Routes(), "/login",
			`{"identifier":"yomira","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeErrorCode(t, recorder))
	})
}

/*
TestHandler_VerifyOTP tests challenge completion over HTTP, carrying the
pending exchange through the flow cookie issued at login time.
*/
func TestHandler_VerifyOTP(t *testing.T) {
	// issueChallenge runs the login step and returns the flow cookie.
	issueChallenge := func(t *testing.T, router http.Handler) *http.Cookie {
		t.Helper()
		recorder := postJSON(t, router, "/login",
			`{"identifier":"yomira","password":"hunter2pass"}`)
		require.Equal(t, http.StatusOK, recorder.Code)
		return cookieByName(t, recorder.Result().Cookies(), "auth_flow")
	}

	challenge := &authgate.AuthResult{RequiresOTP: true, MaskedEmail: "y*****@vericlass.edu"}

	t.Run("success", func(t *testing.T) {
		backend := &fakeBackend{authenticateResult: challenge, verifyResult: sessionResult()}
		handler, _ := newTestHandler(backend)
		router := handler.Routes()

		flowCookie := issueChallenge(t, router)
		recorder := postJSON(t, router, "/verify-otp",
			`{"identifier":"yomira","code":"123456"}`, flowCookie)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "yomira", backend.verifiedIdentifier)

		cookies := recorder.Result().Cookies()
		assert.Equal(t, "access-value", cookieByName(t, cookies, "access_token").Value)
		assert.Equal(t, -1, cookieByName(t, cookies, "auth_flow").MaxAge, "the flow cookie must be consumed")
	})

	t.Run("identifier_mismatch", func(t *testing.T) {
		backend := &fakeBackend{authenticateResult: challenge, verifyResult: sessionResult()}
		handler, _ := newTestHandler(backend)
		router := handler.Routes()

		flowCookie := issueChallenge(t, router)
		recorder := postJSON(t, router, "/verify-otp",
			`{"identifier":"someone-else","code":"123456"}`, flowCookie)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "OTP_IDENTIFIER_MISMATCH", decodeErrorCode(t, recorder))
	})

	t.Run("no_pending_flow", func(t *testing.T) {
		handler, _ := newTestHandler(&fakeBackend{verifyResult: sessionResult()})
		recorder := postJSON(t, handler.Routes(), "/verify-otp",
			`{"identifier":"yomira","code":"123456"}`)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "INVALID_OR_EXPIRED_OTP", decodeErrorCode(t, recorder))
	})

	t.Run("malformed_code", func(t *testing.T) {
		backend := &fakeBackend{authenticateResult: challenge, verifyResult: sessionResult()}
		handler, _ := newTestHandler(backend)
		router := handler.Routes()

		flowCookie := issueChallenge(t, router)
		recorder := postJSON(t, router, "/verify-otp",
			`{"identifier":"yomira","code":"12345"}`, flowCookie)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

/*
TestHandler_Register tests enrollment validation and the registration
challenge over HTTP.
*/
func TestHandler_Register(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"short_username", `{"username":"ab","email":"a@b.edu","password":"longenough1","fullName":"A B","role":"student"}`},
			{"bad_email", `{"username":"newstudent","email":"not-an-email","password":"longenough1","fullName":"A B","role":"student"}`},
			{"short_password", `{"username":"newstudent","email":"a@b.edu","password":"short","fullName":"A B","role":"student"}`},
			{"admin_role_rejected", `{"username":"newstudent","email":"a@b.edu","password":"longenough1","fullName":"A B","role":"admin"}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				handler, _ := newTestHandler(&fakeBackend{})
				recorder := postJSON(t, handler.Routes(), "/register", tt.body)
				assert.Equal(t, http.StatusBadRequest, recorder.Code)
			})
		}
	})

	t.Run("challenge_issued", func(t *testing.T) {
		backend := &fakeBackend{registerResult: &authgate.AuthResult{
			RequiresOTP: true,
			MaskedEmail: "n**@vericlass.edu",
		}}
		handler, _ := newTestHandler(backend)

		recorder := postJSON(t, handler.Routes(), "/register",
			`{"username":"newstudent","email":"new@vericlass.edu","password":"longenough1","fullName":"New Student","role":"student"}`)

		require.Equal(t, http.StatusOK, recorder.Code)
		flowCookie := cookieByName(t, recorder.Result().Cookies(), "auth_flow")
		assert.NotEmpty(t, flowCookie.Value)
	})

	t.Run("registration_cookie_rejected_by_login_verify", func(t *testing.T) {
		backend := &fakeBackend{
			registerResult: &authgate.AuthResult{RequiresOTP: true, MaskedEmail: "n**@vericlass.edu"},
			verifyResult:   sessionResult(),
		}
		handler, _ := newTestHandler(backend)
		router := handler.Routes()

		registered := postJSON(t, router, "/register",
			`{"username":"newstudent","email":"new@vericlass.edu","password":"longenough1","fullName":"New Student","role":"student"}`)
		require.Equal(t, http.StatusOK, registered.Code)
		flowCookie := cookieByName(t, registered.Result().Cookies(), "auth_flow")

		recorder := postJSON(t, router, "/verify-otp",
			`{"identifier":"new@vericlass.edu","code":"654321"}`, flowCookie)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "INVALID_OR_EXPIRED_OTP", decodeErrorCode(t, recorder))
	})
}

/*
TestHandler_Session tests the current-session endpoint across the token
states.
*/
func TestHandler_Session(t *testing.T) {
	getSession := func(handler *authgate.Handler, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodGet, "/session", nil)
		for _, cookie := range cookies {
			request.AddCookie(cookie)
		}
		recorder := httptest.NewRecorder()
		handler.Routes().ServeHTTP(recorder, request)
		return recorder
	}

	t.Run("no_cookie", func(t *testing.T) {
		handler, _ := newTestHandler(&fakeBackend{})
		recorder := getSession(handler)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "INVALID_TOKEN", decodeErrorCode(t, recorder))
	})

	t.Run("valid_token", func(t *testing.T) {
		backend := &validatingBackend{user: &authgate.User{ID: "u1", Username: "yomira", Role: "student"}}
		handler, _ := newTestHandler(backend)

		recorder := getSession(handler, &http.Cookie{Name: "access_token", Value: "access-value"})

		require.Equal(t, http.StatusOK, recorder.Code)
		var envelope struct {
			Data struct {
				User     *authgate.User `json:"user"`
				Redirect string         `json:"redirect"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.Equal(t, "u1", envelope.Data.User.ID)
		assert.Equal(t, "/student", envelope.Data.Redirect)
	})

	t.Run("invalid_token", func(t *testing.T) {
		handler, _ := newTestHandler(&fakeBackend{})
		recorder := getSession(handler, &http.Cookie{Name: "access_token", Value: "bad-token"})

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "INVALID_TOKEN", decodeErrorCode(t, recorder))
	})

	t.Run("backend_down", func(t *testing.T) {
		handler, _ := newTestHandler(&erroringBackend{err: authgate.ErrBackendUnreachable})
		recorder := getSession(handler, &http.Cookie{Name: "access_token", Value: "access-value"})

		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	})
}

/*
TestHandler_Logout tests the teardown endpoint end to end: token and flow
cookies expire and the response is a 204 regardless of backend health.
*/
func TestHandler_Logout(t *testing.T) {
	backend := &fakeBackend{revokeErr: authgate.ErrBackendUnreachable}
	handler, _ := newTestHandler(backend)

	recorder := postJSON(t, handler.Routes(), "/logout", "",
		&http.Cookie{Name: "access_token", Value: "access-value"},
		&http.Cookie{Name: "refresh_token", Value: "refresh-value"})

	assert.Equal(t, http.StatusNoContent, recorder.Code)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 3)
	for _, cookie := range cookies {
		assert.Equal(t, -1, cookie.MaxAge)
	}
	assert.Equal(t, "refresh-value", backend.revokedToken)
}

/*
TestHandler_ForgotPassword tests that the endpoint answers 204 and never
exposes account existence.
*/
func TestHandler_ForgotPassword(t *testing.T) {
	backend := &fakeBackend{}
	handler, _ := newTestHandler(backend)

	recorder := postJSON(t, handler.Routes(), "/forgot-password",
		`{"email":"yomira@vericlass.edu"}`)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "yomira@vericlass.edu", backend.resetEmail)
}

/*
TestHandler_ResetPassword tests the completion form: mismatched
confirmation and short passwords are rejected before the backend call.
*/
func TestHandler_ResetPassword(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected int
	}{
		{"success", `{"token":"reset-token","password":"newpassword1","confirmPassword":"newpassword1"}`, http.StatusNoContent},
		{"mismatch", `{"token":"reset-token","password":"newpassword1","confirmPassword":"different"}`, http.StatusBadRequest},
		{"short_password", `{"token":"reset-token","password":"short","confirmPassword":"short"}`, http.StatusBadRequest},
		{"missing_token", `{"password":"newpassword1","confirmPassword":"newpassword1"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(&fakeBackend{})
			recorder := postJSON(t, handler.Routes(), "/reset-password", tt.body)
			assert.Equal(t, tt.expected, recorder.Code)
		})
	}
}

// validatingBackend resolves every token to a fixed user.
type validatingBackend struct {
	fakeBackend
	user *authgate.User
}

func (b *validatingBackend) ValidateToken(context.Context, string) (*authgate.User, error) {
	return b.user, nil
}

// erroringBackend fails every validation with a fixed transport error.
type erroringBackend struct {
	fakeBackend
	err error
}

func (b *erroringBackend) ValidateToken(context.Context, string) (*authgate.User, error) {
	return nil, b.err
}

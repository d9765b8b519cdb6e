// Copyright (c) 2026 VeriClass. All rights reserved.

package authgate

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vericlass/vericlass/internal/platform/respond"
	"github.com/vericlass/vericlass/internal/platform/sec"
	"github.com/vericlass/vericlass/internal/platform/validate"

	requestutil "github.com/vericlass/vericlass/internal/platform/request"
)

// # Field Identifiers

const (
	FieldIdentifier      = "identifier"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldCode            = "code"
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldFullName        = "fullName"
	FieldRole            = "role"
	FieldToken           = "token"
	FieldAccessToken     = "accessToken"
	FieldRefreshToken    = "refreshToken"
)

// flowCookieName carries the pending two-phase exchange between the
// initiate and verify requests.
const flowCookieName = "auth_flow"

// flowCookieMaxAge bounds how long a pending challenge may sit unverified
// on the client. The backend's own challenge TTL is the real limit; this
// only keeps dead cookies from lingering.
const flowCookieMaxAge = 300

// Handler exposes the gateway's authentication API under /api/auth.
type Handler struct {
	controller *Controller
	cache      *ValidationCache
	codec      *TokenCodec
	secure     bool
}

// NewHandler constructs the auth HTTP handler. secure controls the Secure
// attribute on the flow cookie, matching the token cookies.
func NewHandler(controller *Controller, cache *ValidationCache, codec *TokenCodec, secure bool) *Handler {
	return &Handler{
		controller: controller,
		cache:      cache,
		codec:      codec,
		secure:     secure,
	}
}

// Routes mounts the authentication endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)
	router.Post("/verify-otp", handler.verifyOTP)
	router.Post("/register", handler.register)
	router.Post("/verify-registration", handler.verifyRegistration)
	router.Post("/logout", handler.logout)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)
	router.Post("/set-tokens", handler.setTokens)
	router.Post("/clear-tokens", handler.clearTokens)
	router.Get("/session", handler.session)

	return router
}

// # Request / Response Shapes

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type verifyRequest struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type setTokensRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// challengeResponse tells the frontend a one-time code is pending.
type challengeResponse struct {
	RequiresOTP bool   `json:"requiresOTP"`
	Email       string `json:"email"`
}

// sessionResponse is the established-session payload.
type sessionResponse struct {
	User     *User  `json:"user"`
	Redirect string `json:"redirect"`
}

// # Login

/*
login starts the credential phase.

POST /api/auth/login

Description: Exchanges identifier/password with the identity service.
Accounts with a second factor receive a one-time code; the pending exchange
is pinned to this browser through a short-lived flow cookie so the verify
step cannot be replayed against a different identifier.

Request:
  - Body: loginRequest (Identifier, Password)

Response:
  - 200: challengeResponse when a code is pending, sessionResponse otherwise
  - 401: INVALID_CREDENTIALS
  - 503/504: Identity service unavailable
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldIdentifier, input.Identifier)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	outcome, err := handler.controller.LoginInitiate(request.Context(), writer, input.Identifier, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if outcome.Authenticated() {
		handler.clearFlowCookie(writer)
		respond.OK(writer, sessionResponse{
			User:     outcome.User,
			Redirect: sec.UserRole(outcome.User.Role).DashboardPath(),
		})
		return
	}

	handler.setFlowCookie(writer, outcome.Flow)
	respond.OK(writer, challengeResponse{
		RequiresOTP: true,
		Email:       outcome.Flow.MaskedEmail,
	})
}

/*
verifyOTP completes the login challenge.

POST /api/auth/verify-otp

Description: Resolves the pending challenge. The identifier must match the
one that initiated the flow; a mismatch is a 400, a wrong or expired code a
401 that leaves the challenge retryable.

Request:
  - Body: verifyRequest (Identifier, Code)

Response:
  - 200: sessionResponse
  - 400: OTP_IDENTIFIER_MISMATCH
  - 401: INVALID_OR_EXPIRED_OTP
*/
func (handler *Handler) verifyOTP(writer http.ResponseWriter, request *http.Request) {
	handler.completeChallenge(writer, request, false)
}

// # Registration

/*
register starts a two-phase account creation.

POST /api/auth/register

Description: Validates the enrollment form and asks the identity service to
issue a verification code to the new account's email. No account exists
until the code is verified.

Request:
  - Body: registerRequest (Username, Email, Password, FullName, Role)

Response:
  - 200: challengeResponse
  - 400: Validation failure
  - 409: Username or email already taken
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, 3).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8).
		Required(FieldFullName, input.FullName).
		OneOf(FieldRole, input.Role, string(sec.RoleFaculty), string(sec.RoleStudent))

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	outcome, err := handler.controller.RegisterInitiate(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		FullName: input.FullName,
		Role:     input.Role,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setFlowCookie(writer, outcome.Flow)
	respond.OK(writer, challengeResponse{
		RequiresOTP: true,
		Email:       outcome.Flow.MaskedEmail,
	})
}

// verifyRegistration completes the registration challenge.
//
// POST /api/auth/verify-registration
func (handler *Handler) verifyRegistration(writer http.ResponseWriter, request *http.Request) {
	handler.completeChallenge(writer, request, true)
}

// completeChallenge is the shared verify step for both flows.
func (handler *Handler) completeChallenge(writer http.ResponseWriter, request *http.Request, registration bool) {
	var input verifyRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldIdentifier, input.Identifier)
	validator.Required(FieldCode, input.Code).
		Digits(FieldCode, input.Code, 6)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	flow, ok := handler.readFlowCookie(request, registration)
	if !ok {
		respond.Error(writer, request, ErrInvalidOTP)
		return
	}

	var (
		outcome *Outcome
		err     error
	)
	if registration {
		outcome, err = handler.controller.RegisterVerify(request.Context(), writer, flow, input.Identifier, input.Code)
	} else {
		outcome, err = handler.controller.LoginVerify(request.Context(), writer, flow, input.Identifier, input.Code)
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearFlowCookie(writer)
	respond.OK(writer, sessionResponse{
		User:     outcome.User,
		Redirect: sec.UserRole(outcome.User.Role).DashboardPath(),
	})
}

// # Session Lifecycle

/*
logout tears the session down.

POST /api/auth/logout

Description: Clears both token cookies unconditionally, purges the access
token's cached verdict, and revokes the refresh token at the identity
service best-effort. Always succeeds from the client's perspective.

Response:
  - 204: Session ended
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	accessToken, _ := handler.codec.ReadAccess(request)
	refreshToken, _ := handler.codec.ReadRefresh(request)

	handler.controller.Logout(request.Context(), writer, accessToken, refreshToken)
	handler.clearFlowCookie(writer)

	respond.NoContent(writer)
}

/*
setTokens persists a token pair issued out-of-band.

POST /api/auth/set-tokens

Description: The frontend calls this after completing an exchange that
returned tokens in the response body instead of cookies. Both members are
required; a partial pair is rejected before any cookie is written, so the
browser never holds half a session.

Request:
  - Body: setTokensRequest (AccessToken, RefreshToken)

Response:
  - 200: {success: true} once the pair is persisted
  - 400: TOKEN_MISSING when either member is absent
*/
func (handler *Handler) setTokens(writer http.ResponseWriter, request *http.Request) {
	var input setTokensRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// If a previous session's token is being replaced, its cached verdict
	// must not outlive it.
	if previous, ok := handler.codec.ReadAccess(request); ok && previous != "" {
		handler.cache.Invalidate(previous)
	}

	if err := handler.codec.Persist(writer, TokenPair{
		AccessToken:  input.AccessToken,
		RefreshToken: input.RefreshToken,
	}); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"success": true})
}

/*
clearTokens removes the token cookies without touching the backend.

POST /api/auth/clear-tokens

Response:
  - 200: {success: true} with both cookies expired
*/
func (handler *Handler) clearTokens(writer http.ResponseWriter, request *http.Request) {
	if accessToken, ok := handler.codec.ReadAccess(request); ok && accessToken != "" {
		handler.cache.Invalidate(accessToken)
	}
	handler.codec.Clear(writer)

	respond.OK(writer, map[string]bool{"success": true})
}

/*
session reports the current authenticated user.

GET /api/auth/session

Response:
  - 200: sessionResponse for the validated token
  - 401: INVALID_TOKEN when no valid session exists
*/
func (handler *Handler) session(writer http.ResponseWriter, request *http.Request) {
	accessToken, ok := handler.codec.ReadAccess(request)
	if !ok || accessToken == "" {
		respond.Error(writer, request, ErrInvalidToken)
		return
	}

	verdict, err := handler.cache.Validate(request.Context(), accessToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !verdict.Valid {
		respond.Error(writer, request, ErrInvalidToken)
		return
	}

	respond.OK(writer, sessionResponse{
		User:     verdict.User,
		Redirect: sec.UserRole(verdict.User.Role).DashboardPath(),
	})
}

// # Password Recovery

// forgotPassword starts the reset flow.
//
// POST /api/auth/forgot-password
//
// Always answers 204 so the endpoint cannot be used to probe which emails
// have accounts.
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.controller.ForgotPassword(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// resetPassword completes the reset flow.
//
// POST /api/auth/reset-password
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8).
		Equal(FieldConfirmPassword, input.ConfirmPassword, input.Password, "Passwords do not match")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.controller.ResetPassword(request.Context(), input.Token, input.Password, input.ConfirmPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Flow Cookie

// flowCookiePayload is the serialized pending exchange.
type flowCookiePayload struct {
	Identifier   string `json:"identifier"`
	MaskedEmail  string `json:"email"`
	Registration bool   `json:"registration"`
}

// setFlowCookie pins the pending challenge to this browser. The cookie is
// a convenience binding only; the identity service enforces the real
// identifier-to-challenge association server side.
func (handler *Handler) setFlowCookie(writer http.ResponseWriter, flow *Flow) {
	payload, err := json.Marshal(flowCookiePayload{
		Identifier:   flow.Identifier,
		MaskedEmail:  flow.MaskedEmail,
		Registration: flow.registration,
	})
	if err != nil {
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     flowCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/api/auth",
		MaxAge:   flowCookieMaxAge,
		HttpOnly: true,
		Secure:   handler.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (handler *Handler) readFlowCookie(request *http.Request, registration bool) (*Flow, bool) {
	cookie, err := request.Cookie(flowCookieName)
	if err != nil {
		return nil, false
	}

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil, false
	}

	var payload flowCookiePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false
	}
	if payload.Registration != registration {
		return nil, false
	}

	return &Flow{
		State:        StateOtpPending,
		Identifier:   payload.Identifier,
		MaskedEmail:  payload.MaskedEmail,
		registration: payload.Registration,
	}, true
}

func (handler *Handler) clearFlowCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     flowCookieName,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   handler.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

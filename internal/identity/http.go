// Copyright (c) 2026 VeriClass. All rights reserved.

package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vericlass/vericlass/internal/platform/apperr"
	"github.com/vericlass/vericlass/internal/platform/middleware"
	"github.com/vericlass/vericlass/internal/platform/respond"
	"github.com/vericlass/vericlass/internal/platform/validate"

	requestutil "github.com/vericlass/vericlass/internal/platform/request"
)

// # HTTP Transport

// Handler exposes the identity endpoints under /api/v1/identity.
type Handler struct {
	service *Service
}

// NewHandler constructs the identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for the identity domain.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)
	router.Post("/login/verify-otp", handler.verifyLoginOTP)
	router.Post("/register", handler.register)
	router.Post("/register/verify-otp", handler.verifyRegisterOTP)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	router.Group(func(authenticated chi.Router) {
		authenticated.Use(middleware.RequireAuth)
		authenticated.Get("/me", handler.me)
	})

	return router
}

// # Request / Response Shapes

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type verifyOTPRequest struct {
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

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// authResponse is the combined login/registration result on the wire.
type authResponse struct {
	RequiresOTP  bool   `json:"requiresOTP"`
	Email        string `json:"email,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         *User  `json:"user,omitempty"`
}

func toAuthResponse(outcome *AuthOutcome) authResponse {
	return authResponse{
		RequiresOTP:  outcome.RequiresOTP,
		Email:        outcome.MaskedEmail,
		AccessToken:  outcome.AccessToken,
		RefreshToken: outcome.RefreshToken,
		User:         outcome.User,
	}
}

func sessionMeta(request *http.Request) SessionMeta {
	return SessionMeta{
		UserAgent: request.UserAgent(),
		IPAddress: middleware.RealIP(request),
	}
}

// # Handlers

/*
login verifies credentials.

POST /api/v1/identity/login

Description: Returns tokens directly for single-factor accounts, or the
masked email a one-time code was sent to for two-factor accounts.

Request:
  - Body: loginRequest (Identifier, Password)

Response:
  - 200: authResponse
  - 401: INVALID_CREDENTIALS
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

	outcome, err := handler.service.Authenticate(request.Context(), input.Identifier, input.Password, sessionMeta(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, toAuthResponse(outcome))
}

/*
verifyLoginOTP resolves a pending login challenge.

POST /api/v1/identity/login/verify-otp

Request:
  - Body: verifyOTPRequest (Identifier, Code)

Response:
  - 200: authResponse with tokens
  - 401: INVALID_OR_EXPIRED_OTP
*/
func (handler *Handler) verifyLoginOTP(writer http.ResponseWriter, request *http.Request) {
	var input verifyOTPRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldIdentifier, input.Identifier)
	validator.Required(FieldCode, input.Code).
		Digits(FieldCode, input.Code, OTPCodeLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	outcome, err := handler.service.VerifyLoginOTP(request.Context(), input.Identifier, input.Code, sessionMeta(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, toAuthResponse(outcome))
}

/*
register starts a two-phase signup.

POST /api/v1/identity/register

Request:
  - Body: registerRequest (Username, Email, Password, FullName, Role)

Response:
  - 200: authResponse with the masked challenge destination
  - 409: Username or email taken
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
		Required(FieldFullName, input.FullName)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	outcome, err := handler.service.RegisterInitiate(request.Context(), RegisterInput{
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

	respond.OK(writer, toAuthResponse(outcome))
}

/*
verifyRegisterOTP materializes a pending registration.

POST /api/v1/identity/register/verify-otp

Request:
  - Body: verifyOTPRequest (Identifier = email, Code)

Response:
  - 200: authResponse with tokens for the new account
  - 401: INVALID_OR_EXPIRED_OTP
*/
func (handler *Handler) verifyRegisterOTP(writer http.ResponseWriter, request *http.Request) {
	var input verifyOTPRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldIdentifier, input.Identifier)
	validator.Required(FieldCode, input.Code).
		Digits(FieldCode, input.Code, OTPCodeLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	outcome, err := handler.service.VerifyRegisterOTP(request.Context(), input.Identifier, input.Code, sessionMeta(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, toAuthResponse(outcome))
}

/*
me returns the account behind the presented access token.

GET /api/v1/identity/me

Response:
  - 200: User
  - 401: INVALID_TOKEN
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, apperr.InvalidToken())
		return
	}

	user, err := handler.service.GetUser(request.Context(), claims.UserID)
	if err != nil {
		// The account may have been deleted after the token was issued.
		respond.Error(writer, request, apperr.InvalidToken())
		return
	}

	respond.OK(writer, user)
}

/*
refresh rotates a refresh token.

POST /api/v1/identity/refresh

Request:
  - Body: refreshRequest (RefreshToken)

Response:
  - 200: authResponse with the new pair
  - 401: INVALID_TOKEN
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.RefreshToken == "" {
		respond.Error(writer, request, validate.RequiredError(FieldRefreshToken, "is required"))
		return
	}

	outcome, err := handler.service.Refresh(request.Context(), input.RefreshToken, sessionMeta(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, toAuthResponse(outcome))
}

/*
logout revokes the session behind a refresh token.

POST /api/v1/identity/logout

Description: Idempotent; an unknown token still answers 204.

Response:
  - 204: Session revoked or already gone
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.service.Revoke(request.Context(), input.RefreshToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
forgotPassword starts the reset flow.

POST /api/v1/identity/forgot-password

Description: Always answers 204; account existence is never revealed.

Response:
  - 204: Reset initiated (or silently ignored)
*/
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

	if err := handler.service.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
resetPassword completes the reset flow.

POST /api/v1/identity/reset-password

Request:
  - Body: resetPasswordRequest (Token, NewPassword)

Response:
  - 204: Password replaced, all sessions revoked
  - 401: INVALID_TOKEN
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, 8)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ResetPassword(request.Context(), input.Token, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// Copyright (c) 2026 VeriClass. All rights reserved.

package authgate

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
)

// # Login/Registration State Machine

// FlowState is the position of a login or registration flow.
//
// Transitions: Idle → CredentialsSubmitted → OtpPending → Authenticated.
// A failure from any non-terminal state returns to Idle with the error
// surfaced to the caller — never a silent retry.
type FlowState int

const (
	StateIdle FlowState = iota
	StateCredentialsSubmitted
	StateOtpPending
	StateAuthenticated
)

// Flow is an in-progress two-phase exchange. It carries the identifier the
// challenge was bound to, so the verify step cannot silently switch
// accounts between phases.
type Flow struct {
	State       FlowState
	Identifier  string
	MaskedEmail string

	// registration marks flows started by RegisterInitiate.
	registration bool
}

// Outcome is the result of a flow step.
//
// Either the flow reached Authenticated (User set, tokens persisted as
// cookies) or it is waiting on a one-time code (Flow set).
type Outcome struct {
	User *User
	Flow *Flow
}

// Authenticated reports whether the step established a session.
func (outcome *Outcome) Authenticated() bool {
	return outcome != nil && outcome.User != nil
}

// otpCodeRegex enforces the fixed 6-digit code format before any backend
// call is made.
var otpCodeRegex = regexp.MustCompile(`^[0-9]{6}$`)

// Controller orchestrates the two-phase login/registration flows against
// the identity backend, persisting issued tokens through the codec and
// keeping the validation cache coherent on logout.
type Controller struct {
	backend IdentityBackend
	cache   *ValidationCache
	codec   *TokenCodec
	logger  *slog.Logger
}

// NewController constructs a flow Controller.
func NewController(backend IdentityBackend, cache *ValidationCache, codec *TokenCodec, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		backend: backend,
		cache:   cache,
		codec:   codec,
		logger:  logger,
	}
}

// # Login

/*
LoginInitiate submits credentials and advances the flow.

Description: Exchanges the identifier/password pair with the identity
backend. Accounts without a second factor authenticate in one step
(tokens persisted, Authenticated reached); accounts with one receive a
one-time code and the flow parks in OtpPending, remembering the identifier
for the verify step.

Returns:
  - *Outcome: Authenticated user, or the pending flow with the masked email.
  - error: [ErrInvalidCredentials] or backend transport errors, verbatim.
*/
func (controller *Controller) LoginInitiate(ctx context.Context, writer http.ResponseWriter, identifier, password string) (*Outcome, error) {
	result, err := controller.backend.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	if result.RequiresOTP {
		return &Outcome{
			Flow: &Flow{
				State:       StateOtpPending,
				Identifier:  identifier,
				MaskedEmail: result.MaskedEmail,
			},
		}, nil
	}

	// Degenerate path: no second factor, Authenticated reached in one step.
	return controller.finish(writer, result)
}

/*
LoginVerify completes a pending login challenge.

Description: The backend binds the challenge to the identifier used at
initiate time, not to a session id — so the identifier the caller supplies
here MUST be the one the flow was started with. The redundant parameter
exists because browsers resend it; rather than trusting the caller, a
mismatch is rejected explicitly with [ErrOTPIdentifierMismatch].

A wrong or expired code returns [ErrInvalidOTP] without advancing the flow;
the caller may retry with a fresh code.

Returns:
  - *Outcome: Authenticated user with tokens persisted.
  - error: Mismatch, format, or backend errors; the flow state is unchanged.
*/
func (controller *Controller) LoginVerify(ctx context.Context, writer http.ResponseWriter, flow *Flow, identifier, code string) (*Outcome, error) {
	if flow == nil || flow.State != StateOtpPending || flow.registration {
		return nil, ErrInvalidOTP
	}

	if identifier != flow.Identifier {
		return nil, ErrOTPIdentifierMismatch
	}

	// Codes are exactly six digits; anything else is rejected before the
	// backend call.
	if !otpCodeRegex.MatchString(code) {
		return nil, ErrInvalidOTP
	}

	result, err := controller.backend.VerifyLoginOTP(ctx, flow.Identifier, code)
	if err != nil {
		return nil, err
	}

	flow.State = StateAuthenticated
	return controller.finish(writer, result)
}

// # Registration

// RegisterInitiate starts a two-phase account creation, mirroring the login
// shape: the backend issues a one-time code to the new account's email.
func (controller *Controller) RegisterInitiate(ctx context.Context, input RegisterInput) (*Outcome, error) {
	result, err := controller.backend.RegisterInitiate(ctx, input)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Flow: &Flow{
			State:        StateOtpPending,
			Identifier:   input.Email,
			MaskedEmail:  result.MaskedEmail,
			registration: true,
		},
	}, nil
}

// RegisterVerify completes a pending registration challenge with the same
// identifier-binding guard as [Controller.LoginVerify].
func (controller *Controller) RegisterVerify(ctx context.Context, writer http.ResponseWriter, flow *Flow, identifier, code string) (*Outcome, error) {
	if flow == nil || flow.State != StateOtpPending || !flow.registration {
		return nil, ErrInvalidOTP
	}

	if identifier != flow.Identifier {
		return nil, ErrOTPIdentifierMismatch
	}

	if !otpCodeRegex.MatchString(code) {
		return nil, ErrInvalidOTP
	}

	result, err := controller.backend.VerifyRegisterOTP(ctx, flow.Identifier, code)
	if err != nil {
		return nil, err
	}

	flow.State = StateAuthenticated
	return controller.finish(writer, result)
}

// # Session Teardown

/*
Logout ends the session from the client's perspective.

Description: Cookie clearing is local and unconditional — it happens first
and always succeeds, even when the identity backend is unreachable. The
outgoing access token is removed from the validation cache so no request
issued after this response completes can be served a stale Valid verdict.
Backend revocation is best-effort and only logged on failure.
*/
func (controller *Controller) Logout(ctx context.Context, writer http.ResponseWriter, accessToken, refreshToken string) {
	controller.codec.Clear(writer)

	if accessToken != "" {
		controller.cache.Invalidate(accessToken)
	}

	if refreshToken != "" {
		if err := controller.backend.Revoke(ctx, refreshToken); err != nil {
			controller.logger.WarnContext(ctx, "logout_backend_revoke_failed",
				slog.String("error", err.Error()),
			)
		}
	}
}

// # Password Recovery

// ForgotPassword starts the single-phase reset flow.
func (controller *Controller) ForgotPassword(ctx context.Context, email string) error {
	return controller.backend.RequestPasswordReset(ctx, email)
}

// ResetPassword completes the reset flow.
//
// The password/confirm equality check is a convenience for the form, not a
// security boundary; the backend applies its own policy.
func (controller *Controller) ResetPassword(ctx context.Context, resetToken, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordConfirmMismatch
	}
	return controller.backend.ResetPassword(ctx, resetToken, newPassword)
}

// finish persists an authenticated result's tokens and builds the outcome.
func (controller *Controller) finish(writer http.ResponseWriter, result *AuthResult) (*Outcome, error) {
	if result.Tokens == nil {
		return nil, ErrTokenMissing
	}

	if err := controller.codec.Persist(writer, *result.Tokens); err != nil {
		return nil, err
	}

	return &Outcome{User: result.User}, nil
}

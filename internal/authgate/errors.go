// Copyright (c) 2026 VeriClass. All rights reserved.

package authgate

import (
	"net/http"

	"github.com/vericlass/vericlass/internal/platform/apperr"
)

// # Error Taxonomy
//
// Every backend-calling operation returns one of these explicitly; there is
// no implicit unwinding across the cache/controller boundary. Handlers
// surface them verbatim to the frontend — the controller never retries.

var (
	// ErrInvalidCredentials is a rejected username/password exchange.
	ErrInvalidCredentials = apperr.InvalidCredentials()

	// ErrInvalidOTP is a wrong or expired one-time code. The pending
	// challenge survives it, so the caller may retry with a new code.
	ErrInvalidOTP = apperr.InvalidOTP()

	// ErrOTPIdentifierMismatch reports a caller bug: the identifier passed
	// to the verify step differs from the one the challenge was issued for.
	ErrOTPIdentifierMismatch = &apperr.AppError{
		Code:       "OTP_IDENTIFIER_MISMATCH",
		Message:    "One-time code verification must reuse the identifier that initiated the login",
		HTTPStatus: http.StatusBadRequest,
	}

	// ErrTokenMissing is a set-tokens call with a partial payload. Partial
	// pairs are never persisted.
	ErrTokenMissing = &apperr.AppError{
		Code:       "TOKEN_MISSING",
		Message:    "Both accessToken and refreshToken are required",
		HTTPStatus: http.StatusBadRequest,
	}

	// ErrInvalidToken is the definitive negative validation verdict. Unlike
	// transport failures it is cacheable.
	ErrInvalidToken = apperr.InvalidToken()

	// ErrBackendTimeout is a validation or auth call that exceeded the
	// configured request timeout. Never cached; the affected request is
	// treated as unauthenticated.
	ErrBackendTimeout = apperr.GatewayTimeout("Identity service did not answer in time")

	// ErrBackendUnreachable is a transport-level failure talking to the
	// identity service. Never cached.
	ErrBackendUnreachable = apperr.ServiceUnavailable("Identity service is unreachable")

	// ErrPasswordConfirmMismatch is a reset form whose two password fields
	// disagree.
	ErrPasswordConfirmMismatch = &apperr.AppError{
		Code:       "PASSWORD_CONFIRM_MISMATCH",
		Message:    "Password and confirmation do not match",
		HTTPStatus: http.StatusBadRequest,
	}
)

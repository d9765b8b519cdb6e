// Copyright (c) 2026 VeriClass. All rights reserved.

/*
Package authgate implements the session-validation core of the VeriClass
gateway: route classification, token custody, the validation cache, and the
two-phase login/registration flows.

Architecture:

  - Classifier: Pure routing-table lookup deciding whether a path needs a session.
  - ValidationCache: Process-wide verdict cache in front of the identity backend.
  - TokenCodec: HTTP-only cookie custody for the access/refresh token pair.
  - Controller: Orchestrates credential + one-time-code state machines.
  - Gate: Middleware deriving the current user for every inbound request.

The package never talks to storage directly; every remote interaction goes
through the [IdentityBackend] contract so tests can substitute a fake.
*/
package authgate

import "context"

// # Identity Types

// User is the identity attached to a validated session.
//
// It is produced only by a successful validation or login verification and
// is immutable once constructed.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// TokenPair is the access/refresh token pair persisted by [TokenCodec].
//
// Both members must be set before the pair may be persisted; the codec
// rejects partial pairs.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is the outcome of a credential or one-time-code exchange.
//
// Exactly one of the two shapes is populated:
//   - RequiresOTP true: MaskedEmail carries the challenge destination.
//   - RequiresOTP false: Tokens and User carry the established session.
type AuthResult struct {
	RequiresOTP bool       `json:"requiresOTP"`
	MaskedEmail string     `json:"email,omitempty"`
	Tokens      *TokenPair `json:"-"`
	User        *User      `json:"user,omitempty"`
}

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string
}

// # Backend Contract

// IdentityBackend is the remote identity service the gateway fronts.
//
// Implementations must translate transport conditions into the package
// sentinels: [ErrBackendTimeout] for deadline overruns, [ErrBackendUnreachable]
// for connection failures, and [ErrInvalidToken] for a negative validation
// verdict. The [ValidationCache] depends on that distinction — verdicts are
// cacheable, transport failures are not.
type IdentityBackend interface {

	// Authenticate exchanges credentials for either a token pair (accounts
	// without a second factor) or a one-time-code challenge.
	Authenticate(ctx context.Context, identifier, password string) (*AuthResult, error)

	// VerifyLoginOTP completes a pending login challenge. The backend binds
	// the challenge to the identifier used at Authenticate time; a different
	// identifier never resolves the challenge.
	VerifyLoginOTP(ctx context.Context, identifier, code string) (*AuthResult, error)

	// RegisterInitiate starts a two-phase account creation and returns the
	// masked destination of the verification code.
	RegisterInitiate(ctx context.Context, input RegisterInput) (*AuthResult, error)

	// VerifyRegisterOTP completes a pending registration challenge.
	VerifyRegisterOTP(ctx context.Context, identifier, code string) (*AuthResult, error)

	// ValidateToken resolves an access token into the user it belongs to.
	// A definitive negative verdict is reported as [ErrInvalidToken].
	ValidateToken(ctx context.Context, accessToken string) (*User, error)

	// Refresh rotates a refresh token into a fresh token pair.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	// Revoke invalidates the session behind a refresh token. Idempotent.
	Revoke(ctx context.Context, refreshToken string) error

	// RequestPasswordReset starts the forgot-password flow for an email.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword completes the forgot-password flow with a reset token.
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

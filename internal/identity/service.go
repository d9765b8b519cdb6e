// Copyright (c) 2026 VeriClass. All rights reserved.

package identity

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/vericlass/vericlass/internal/platform/apperr"
	"github.com/vericlass/vericlass/internal/platform/sec"
	"github.com/vericlass/vericlass/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - username: The username of the account.
	//   - email: The email of the account.
	//   - role: The role of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, username, email, role string, timeToLive time.Duration) (string, error)
}

// CodeSender delivers one-time codes to their destination. Production wires
// an email provider; development logs the code.
type CodeSender interface {
	SendCode(ctx context.Context, email, code string) error
}

// LogCodeSender writes codes to the structured log instead of sending
// email. Development only.
type LogCodeSender struct {
	Logger *slog.Logger
}

func (sender *LogCodeSender) SendCode(ctx context.Context, email, code string) error {
	sender.Logger.InfoContext(ctx, "otp_code_issued",
		slog.String("email", sec.MaskEmail(email)),
		slog.String("code", code),
	)
	return nil
}

// Service implements the identity use cases behind the gateway.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, challenge,
// or token logic must be reviewed by the security team.
type Service struct {
	userRepository       UserRepository
	sessionRepository    SessionRepository
	challengeRepository  ChallengeRepository
	resetTokenRepository ResetTokenRepository
	tokenProvider        TokenProvider
	codeSender           CodeSender
}

// NewService constructs a new identity [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	challengeRepo ChallengeRepository,
	resetRepo ResetTokenRepository,
	tokenProv TokenProvider,
	sender CodeSender,
) *Service {
	return &Service{
		userRepository:       userRepo,
		sessionRepository:    sessionRepo,
		challengeRepository:  challengeRepo,
		resetTokenRepository: resetRepo,
		tokenProvider:        tokenProv,
		codeSender:           sender,
	}
}

// # Results

// AuthOutcome is the result of a credential or one-time-code exchange.
type AuthOutcome struct {
	RequiresOTP  bool
	MaskedEmail  string
	User         *User
	AccessToken  string
	RefreshToken string
}

// SessionMeta carries per-login request metadata into session records.
type SessionMeta struct {
	UserAgent string
	IPAddress string
}

// # Authentication Flow

/*
Authenticate verifies credentials and either issues tokens or starts a
one-time-code challenge.

Description: The identifier matches username or email. Accounts with a
second factor never receive tokens here; a code is generated, hashed into a
Redis challenge keyed by the submitted identifier, and sent to the
account's email. A lookup miss and a wrong password are indistinguishable
to the caller.

Parameters:
  - context: context.Context
  - identifier: string
  - password: string
  - meta: SessionMeta

Returns:
  - *AuthOutcome: Tokens, or the masked challenge destination
  - error: apperr.InvalidCredentials or storage errors
*/
func (service *Service) Authenticate(context context.Context, identifier, password string, meta SessionMeta) (*AuthOutcome, error) {
	user, err := service.userRepository.FindByIdentifier(context, identifier)
	if err != nil {
		// Burn comparable time so a missing account is not observable.
		sec.CheckPasswordHash(password, decoyHash)
		return nil, apperr.InvalidCredentials()
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	if !user.TwoFactorEnabled {
		return service.establishSession(context, user, meta)
	}

	code, err := sec.GenerateOTPCode(OTPCodeLength)
	if err != nil {
		return nil, fmt.Errorf("identity_service_otp_generate_failed: %w", err)
	}

	challenge := &LoginChallenge{
		UserID:   user.ID,
		Email:    user.Email,
		CodeHash: sec.HashToken(code),
	}
	if err := service.challengeRepository.SetLogin(context, identifier, challenge, OTPCodeTTL); err != nil {
		return nil, fmt.Errorf("identity_service_challenge_store_failed: %w", err)
	}

	if err := service.codeSender.SendCode(context, user.Email, code); err != nil {
		return nil, fmt.Errorf("identity_service_code_send_failed: %w", err)
	}

	return &AuthOutcome{
		RequiresOTP: true,
		MaskedEmail: sec.MaskEmail(user.Email),
	}, nil
}

/*
VerifyLoginOTP resolves a pending login challenge.

Description: The challenge is looked up by the identifier it was created
under; any other identifier misses and fails as an invalid code. Wrong
codes burn an attempt, and exhausting OTPMaxAttempts destroys the
challenge so the flow must restart from credentials.

Parameters:
  - context: context.Context
  - identifier: string
  - code: string
  - meta: SessionMeta

Returns:
  - *AuthOutcome: Tokens for the established session
  - error: apperr.InvalidOTP or storage errors
*/
func (service *Service) VerifyLoginOTP(context context.Context, identifier, code string, meta SessionMeta) (*AuthOutcome, error) {
	challenge, err := service.challengeRepository.GetLogin(context, identifier)
	if err != nil {
		return nil, apperr.InvalidOTP()
	}

	if subtle.ConstantTimeCompare([]byte(challenge.CodeHash), []byte(sec.HashToken(code))) != 1 {
		challenge.Attempts++
		if challenge.Attempts >= OTPMaxAttempts {
			_ = service.challengeRepository.DeleteLogin(context, identifier)
		} else {
			_ = service.challengeRepository.SetLogin(context, identifier, challenge, OTPCodeTTL)
		}
		return nil, apperr.InvalidOTP()
	}

	// Single use: consume before issuing tokens.
	if err := service.challengeRepository.DeleteLogin(context, identifier); err != nil {
		return nil, fmt.Errorf("identity_service_challenge_consume_failed: %w", err)
	}

	user, err := service.userRepository.FindByID(context, challenge.UserID)
	if err != nil {
		return nil, apperr.InvalidOTP()
	}

	return service.establishSession(context, user, meta)
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string
}

/*
RegisterInitiate validates a signup and parks it behind a one-time code.

Description: No account row is created yet. The hashed password and
profile fields wait in Redis under the email, alongside the hashed code
sent to that address. Verifying the code materializes the account.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *AuthOutcome: Masked challenge destination
  - error: Conflict (if identity exists) or storage errors
*/
func (service *Service) RegisterInitiate(context context.Context, input RegisterInput) (*AuthOutcome, error) {
	taken, err := service.userRepository.ExistsByUsernameOrEmail(context, input.Username, input.Email)
	if err != nil {
		return nil, fmt.Errorf("identity_service_register_lookup_failed: %w", err)
	}
	if taken {
		return nil, apperr.Conflict("Username or email is already registered")
	}

	role := sec.UserRole(input.Role)
	if role != sec.RoleFaculty && role != sec.RoleStudent {
		return nil, apperr.ValidationError("Role must be faculty or student")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("identity_service_hash_failed: %w", err)
	}

	code, err := sec.GenerateOTPCode(OTPCodeLength)
	if err != nil {
		return nil, fmt.Errorf("identity_service_otp_generate_failed: %w", err)
	}

	pending := &PendingRegistration{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		FullName:     input.FullName,
		Role:         input.Role,
		CodeHash:     sec.HashToken(code),
	}
	if err := service.challengeRepository.SetRegistration(context, input.Email, pending, OTPCodeTTL); err != nil {
		return nil, fmt.Errorf("identity_service_registration_store_failed: %w", err)
	}

	if err := service.codeSender.SendCode(context, input.Email, code); err != nil {
		return nil, fmt.Errorf("identity_service_code_send_failed: %w", err)
	}

	return &AuthOutcome{
		RequiresOTP: true,
		MaskedEmail: sec.MaskEmail(input.Email),
	}, nil
}

/*
VerifyRegisterOTP materializes a pending registration into an account.

Parameters:
  - context: context.Context
  - email: string
  - code: string
  - meta: SessionMeta

Returns:
  - *AuthOutcome: Tokens for the brand-new session
  - error: apperr.InvalidOTP, Conflict, or storage errors
*/
func (service *Service) VerifyRegisterOTP(context context.Context, email, code string, meta SessionMeta) (*AuthOutcome, error) {
	pending, err := service.challengeRepository.GetRegistration(context, email)
	if err != nil {
		return nil, apperr.InvalidOTP()
	}

	if subtle.ConstantTimeCompare([]byte(pending.CodeHash), []byte(sec.HashToken(code))) != 1 {
		pending.Attempts++
		if pending.Attempts >= OTPMaxAttempts {
			_ = service.challengeRepository.DeleteRegistration(context, email)
		} else {
			_ = service.challengeRepository.SetRegistration(context, email, pending, OTPCodeTTL)
		}
		return nil, apperr.InvalidOTP()
	}

	if err := service.challengeRepository.DeleteRegistration(context, email); err != nil {
		return nil, fmt.Errorf("identity_service_registration_consume_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Username:     pending.Username,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		FullName:     pending.FullName,
		Role:         sec.UserRole(pending.Role),
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("identity_service_register_failed: %w", err)
	}

	return service.establishSession(context, user, meta)
}

// # Session Lifecycle

/*
GetUser resolves a user by ID for validated requests.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Hydrated entity
  - error: apperr.NotFound or storage errors
*/
func (service *Service) GetUser(context context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(context, userID)
}

/*
Refresh rotates a refresh token into a fresh token pair.

Description: The presented token's session is revoked and a new session is
created atomically from the caller's perspective. A revoked, expired, or
unknown token yields apperr.InvalidToken.

Parameters:
  - context: context.Context
  - refreshToken: string
  - meta: SessionMeta

Returns:
  - *AuthOutcome: New token pair
  - error: apperr.InvalidToken or storage errors
*/
func (service *Service) Refresh(context context.Context, refreshToken string, meta SessionMeta) (*AuthOutcome, error) {
	session, err := service.sessionRepository.FindByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		return nil, apperr.InvalidToken()
	}

	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.InvalidToken()
	}

	// Rotation: the old token must die before its successor is usable.
	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return nil, fmt.Errorf("identity_service_refresh_revoke_failed: %w", err)
	}

	return service.establishSession(context, user, meta)
}

/*
Revoke invalidates the session behind a refresh token.

Description: Idempotent; unknown tokens succeed silently so logout is safe
to repeat.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - error: Storage errors only
*/
func (service *Service) Revoke(context context.Context, refreshToken string) error {
	session, err := service.sessionRepository.FindByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		return nil
	}
	return service.sessionRepository.Revoke(context, session.ID)
}

// # Password Recovery

/*
RequestPasswordReset starts the forgot-password flow for an email.

Description: Always succeeds from the caller's perspective; whether the
email has an account is never revealed.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Storage errors only
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) error {
	user, err := service.userRepository.FindByIdentifier(context, email)
	if err != nil {
		return nil
	}

	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return fmt.Errorf("identity_service_reset_token_failed: %w", err)
	}

	if err := service.resetTokenRepository.Set(context, token, user.ID, ResetTokenTTL); err != nil {
		return fmt.Errorf("identity_service_reset_store_failed: %w", err)
	}

	return service.codeSender.SendCode(context, user.Email, token)
}

/*
ResetPassword completes the forgot-password flow.

Description: Consumes the reset token, replaces the password hash, and
revokes every active session for the account so a stolen refresh token
does not survive the reset.

Parameters:
  - context: context.Context
  - resetToken: string
  - newPassword: string

Returns:
  - error: apperr.InvalidToken or storage errors
*/
func (service *Service) ResetPassword(context context.Context, resetToken, newPassword string) error {
	userID, err := service.resetTokenRepository.Get(context, resetToken)
	if err != nil {
		return apperr.InvalidToken()
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("identity_service_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return err
	}

	_ = service.resetTokenRepository.Delete(context, resetToken)

	return service.sessionRepository.RevokeAll(context, userID)
}

// # Internals

// establishSession issues an access token and a session-backed refresh token.
func (service *Service) establishSession(context context.Context, user *User, meta SessionMeta) (*AuthOutcome, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(
		user.ID, user.Username, user.Email, string(user.Role), AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("identity_service_access_token_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("identity_service_refresh_token_failed: %w", err)
	}

	session := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		ExpiresAt: time.Now().Add(RefreshTokenTTL),
	}
	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("identity_service_session_create_failed: %w", err)
	}

	return &AuthOutcome{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// decoyHash is a valid bcrypt hash of a random value, compared against when
// the account lookup misses so both paths cost one hash verification.
const decoyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

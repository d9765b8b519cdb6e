// Copyright (c) 2026 VeriClass. All rights reserved.

package identity

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is how long an access token verifies. Week-long is
	// safe here because the gateway re-validates every request against
	// this service, so a leaked token can still be cut off server side.
	AccessTokenTTL = 7 * 24 * time.Hour

	// RefreshTokenTTL is how long a session can be rotated before the
	// user must log in again.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the byte length of the random refresh token.
	RefreshTokenLength = 32

	// OTPCodeLength is the digit count of a one-time code.
	OTPCodeLength = 6

	// OTPCodeTTL is how long a pending challenge accepts its code.
	OTPCodeTTL = 5 * time.Minute

	// OTPMaxAttempts bounds wrong-code retries before the challenge is
	// destroyed and the flow must restart.
	OTPMaxAttempts = 5

	// ResetTokenTTL bounds how long a password reset link stays usable.
	ResetTokenTTL = 1 * time.Hour

	// ResetTokenLength is the byte length of the random reset token.
	ResetTokenLength = 32
)

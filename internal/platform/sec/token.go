// Copyright (c) 2026 VeriClass. All rights reserved.

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// # Opaque Tokens

// GenerateSecureToken returns a URL-safe random token of byteLength entropy bytes.
func GenerateSecureToken(byteLength int) (string, error) {
	raw := make([]byte, byteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// HashToken returns the hex-encoded SHA-256 digest of a token.
//
// Refresh tokens and one-time codes are stored hashed so a storage leak
// never exposes a usable credential.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}

// Fingerprint derives a comparison-stable cache key for a token.
//
// The full SHA-256 digest is used — no truncation — so fingerprint collisions
// are not a weaker surface than the token itself.
func Fingerprint(token string) string {
	return HashToken(token)
}

// # One-Time Codes

// GenerateOTPCode returns a random numeric code of the given digit length,
// zero-padded on the left.
func GenerateOTPCode(digits int) (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < digits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}

	value, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("sec: failed to generate one-time code: %w", err)
	}

	return fmt.Sprintf("%0*d", digits, value), nil
}

// # Display Helpers

// MaskEmail obscures the local part of an email for OTP challenge responses,
// e.g. "alice@example.com" becomes "a***@example.com".
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

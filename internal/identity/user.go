// Copyright (c) 2026 VeriClass. All rights reserved.

/*
Package identity implements the account and session management layer behind
the gateway: credential verification, one-time-code challenges, token
issuance, and password recovery.

It defines the core domain entities (User, Session) and the volatile
challenge records that live in Redis between the two phases of a login or
registration.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no
external dependencies and encapsulate all business rules related to
accounts and sessions.
*/
package identity

import (
	"time"

	"github.com/vericlass/vericlass/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the VeriClass platform.
type User struct {
	ID               string       `json:"id"`
	Username         string       `json:"username"`
	Email            string       `json:"email"`
	PasswordHash     string       `json:"-"` // Explicitly omitted from JSON for security.
	FullName         string       `json:"fullName"`
	Role             sec.UserRole `json:"role"`
	TwoFactorEnabled bool         `json:"twoFactorEnabled"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// Session represents an active refresh-token session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Hashed value of the refresh token. Omitted for security.
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	IsRevoked bool      `json:"is_revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginChallenge is the volatile record backing a pending one-time-code
// login. It is keyed by the identifier the credentials were submitted with,
// so a verify call using any other identifier cannot find it.
type LoginChallenge struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	CodeHash string `json:"code_hash"`
	Attempts int    `json:"attempts"`
}

// PendingRegistration is the volatile record backing a two-phase signup.
// No account row exists until the code is verified.
type PendingRegistration struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	CodeHash     string `json:"code_hash"`
	Attempts     int    `json:"attempts"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the identity domain.
const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldFullName     = "fullName"
	FieldRole         = "role"
	FieldIdentifier   = "identifier"
	FieldCode         = "code"
	FieldToken        = "token"
	FieldNewPassword  = "newPassword"
	FieldRefreshToken = "refreshToken"
)

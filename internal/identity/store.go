// Copyright (c) 2026 VeriClass. All rights reserved.

package identity

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByIdentifier returns the account whose username or email matches
		the identifier.

		Parameters:
		  - context: context.Context
		  - identifier: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByIdentifier(context context.Context, identifier string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		ExistsByUsernameOrEmail reports whether either value is already taken.

		Parameters:
		  - context: context.Context
		  - username: string
		  - email: string

		Returns:
		  - bool: True when a live account holds either value
		  - error: Database retrieval failures
	*/
	ExistsByUsernameOrEmail(context context.Context, username, email string) (bool, error)
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh-token sessions.
type SessionRepository interface {

	/*
		Create persists a new tracking session for an authenticated login.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the active session matching the given token hash.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *Session: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	/*
		Revoke marks a specific session as permanently invalidated.

		Parameters:
		  - context: context.Context
		  - sessionID: string

		Returns:
		  - error: Persistence failures
	*/
	Revoke(context context.Context, sessionID string) error

	/*
		RevokeAll revokes every active session belonging to the userID.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	RevokeAll(context context.Context, userID string) error

	/*
		DeleteExpired physically removes sessions whose ExpiresAt is in the past.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context) error
}

// # Volatile Data Access

// ChallengeRepository defines the contract for the volatile records behind
// two-phase logins and registrations. Records expire on their own; Delete
// exists for explicit consumption.
type ChallengeRepository interface {

	/*
		SetLogin stores a pending login challenge keyed by identifier.

		Parameters:
		  - context: context.Context
		  - identifier: string
		  - challenge: *LoginChallenge
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	SetLogin(context context.Context, identifier string, challenge *LoginChallenge, ttl time.Duration) error

	/*
		GetLogin retrieves the pending login challenge for an identifier.

		Parameters:
		  - context: context.Context
		  - identifier: string

		Returns:
		  - *LoginChallenge: Pending record, nil when absent or expired
		  - error: Retrieval failures
	*/
	GetLogin(context context.Context, identifier string) (*LoginChallenge, error)

	/*
		DeleteLogin removes a login challenge after consumption or exhaustion.

		Parameters:
		  - context: context.Context
		  - identifier: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteLogin(context context.Context, identifier string) error

	/*
		SetRegistration stores a pending registration keyed by email.

		Parameters:
		  - context: context.Context
		  - email: string
		  - pending: *PendingRegistration
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	SetRegistration(context context.Context, email string, pending *PendingRegistration, ttl time.Duration) error

	/*
		GetRegistration retrieves the pending registration for an email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *PendingRegistration: Pending record, nil when absent or expired
		  - error: Retrieval failures
	*/
	GetRegistration(context context.Context, email string) (*PendingRegistration, error)

	/*
		DeleteRegistration removes a pending registration.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteRegistration(context context.Context, email string) error
}

// ResetTokenRepository defines the contract for storing volatile password reset tokens.
type ResetTokenRepository interface {

	/*
		Set stores a reset token associated with a userID for a limited duration.

		Parameters:
		  - context: context.Context
		  - token: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, userID string, ttl time.Duration) error

	/*
		Get retrieves the userID associated with a given reset token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: UserID, empty when absent or expired
		  - error: Retrieval failures
	*/
	Get(context context.Context, token string) (string, error)

	/*
		Delete removes a reset token after successful use.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, token string) error
}

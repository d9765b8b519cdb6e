// Copyright (c) 2026 VeriClass. All rights reserved.

package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vericlass/vericlass/internal/platform/apperr"
	"github.com/vericlass/vericlass/internal/platform/constants"
)

// # Challenge Repository

// RedisChallengeRepository implements ChallengeRepository using Redis.
//
// Challenges live under the identity:otp:* key taxonomy and expire on
// their own; every mutation rewrites the whole record, so attempt counts
// survive a Get/Set round trip only through SetLogin/SetRegistration.
type RedisChallengeRepository struct {
	client *redis.Client
}

// NewChallengeRepository creates a new Redis-backed ChallengeRepository.
func NewChallengeRepository(client *redis.Client) *RedisChallengeRepository {
	return &RedisChallengeRepository{client: client}
}

/*
SetLogin stores a pending login challenge keyed by identifier.

Parameters:
  - context: context.Context
  - identifier: string
  - challenge: *LoginChallenge
  - ttl: time.Duration

Returns:
  - error: Encoding or execution errors
*/
func (repository *RedisChallengeRepository) SetLogin(context context.Context, identifier string, challenge *LoginChallenge, ttl time.Duration) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("redis_login_challenge_encode_failed: %w", err)
	}

	key := constants.RedisPrefixLoginOTP + identifier
	if err := repository.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_login_challenge_set_failed: %w", err)
	}

	return nil
}

/*
GetLogin retrieves the pending login challenge for an identifier.

Description: Returns apperr.NotFound if the challenge is absent or expired.

Parameters:
  - context: context.Context
  - identifier: string

Returns:
  - *LoginChallenge: Pending record
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisChallengeRepository) GetLogin(context context.Context, identifier string) (*LoginChallenge, error) {
	key := constants.RedisPrefixLoginOTP + identifier

	raw, err := repository.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("No pending login challenge for this identifier")
		}
		return nil, fmt.Errorf("redis_login_challenge_get_failed: %w", err)
	}

	challenge := &LoginChallenge{}
	if err := json.Unmarshal(raw, challenge); err != nil {
		return nil, fmt.Errorf("redis_login_challenge_decode_failed: %w", err)
	}

	return challenge, nil
}

/*
DeleteLogin removes a login challenge after consumption or exhaustion.

Parameters:
  - context: context.Context
  - identifier: string

Returns:
  - error: Execution errors
*/
func (repository *RedisChallengeRepository) DeleteLogin(context context.Context, identifier string) error {
	key := constants.RedisPrefixLoginOTP + identifier

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_login_challenge_delete_failed: %w", err)
	}

	return nil
}

/*
SetRegistration stores a pending registration keyed by email.

Parameters:
  - context: context.Context
  - email: string
  - pending: *PendingRegistration
  - ttl: time.Duration

Returns:
  - error: Encoding or execution errors
*/
func (repository *RedisChallengeRepository) SetRegistration(context context.Context, email string, pending *PendingRegistration, ttl time.Duration) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("redis_registration_encode_failed: %w", err)
	}

	key := constants.RedisPrefixRegisterOTP + email
	if err := repository.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_registration_set_failed: %w", err)
	}

	return nil
}

/*
GetRegistration retrieves the pending registration for an email.

Description: Returns apperr.NotFound if the record is absent or expired.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *PendingRegistration: Pending record
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisChallengeRepository) GetRegistration(context context.Context, email string) (*PendingRegistration, error) {
	key := constants.RedisPrefixRegisterOTP + email

	raw, err := repository.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("No pending registration for this email")
		}
		return nil, fmt.Errorf("redis_registration_get_failed: %w", err)
	}

	pending := &PendingRegistration{}
	if err := json.Unmarshal(raw, pending); err != nil {
		return nil, fmt.Errorf("redis_registration_decode_failed: %w", err)
	}

	return pending, nil
}

/*
DeleteRegistration removes a pending registration.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Execution errors
*/
func (repository *RedisChallengeRepository) DeleteRegistration(context context.Context, email string) error {
	key := constants.RedisPrefixRegisterOTP + email

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_registration_delete_failed: %w", err)
	}

	return nil
}

// # Reset Token Repository

// RedisResetTokenRepository implements ResetTokenRepository using Redis.
type RedisResetTokenRepository struct {
	client *redis.Client
}

// NewResetTokenRepository creates a new Redis-backed ResetTokenRepository.
func NewResetTokenRepository(client *redis.Client) *RedisResetTokenRepository {
	return &RedisResetTokenRepository{client: client}
}

/*
Set stores a reset token with its associated userID and TTL.

Parameters:
  - context: context.Context
  - token: string
  - userID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisResetTokenRepository) Set(context context.Context, token string, userID string, ttl time.Duration) error {
	key := constants.RedisPrefixResetToken + token

	if err := repository.client.Set(context, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_reset_token_set_failed: %w", err)
	}

	return nil
}

/*
Get retrieves the userID for a given token.

Description: Returns apperr.NotFound if the token is absent or expired.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - string: Original UserID
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisResetTokenRepository) Get(context context.Context, token string) (string, error) {
	key := constants.RedisPrefixResetToken + token

	userID, err := repository.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Reset token is invalid or expired")
		}
		return "", fmt.Errorf("redis_reset_token_get_failed: %w", err)
	}

	return userID, nil
}

/*
Delete removes a reset token after successful use.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Execution errors
*/
func (repository *RedisResetTokenRepository) Delete(context context.Context, token string) error {
	key := constants.RedisPrefixResetToken + token

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_reset_token_delete_failed: %w", err)
	}

	return nil
}

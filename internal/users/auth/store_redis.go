// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vhminh/atrium/internal/platform/apperr"
	"github.com/vhminh/atrium/internal/platform/constants"
)

// # Reset Code Repository

// RedisResetCodeRepository implements ResetCodeRepository using Redis.
//
// Expiry is entirely delegated to Redis TTLs: once the key lapses the code is
// gone, so the application never needs a sweeper for stale codes.
type RedisResetCodeRepository struct {
	client *redis.Client
}

// NewResetCodeRepository creates a new Redis-backed ResetCodeRepository.
func NewResetCodeRepository(client *redis.Client) *RedisResetCodeRepository {
	return &RedisResetCodeRepository{client: client}
}

/*
Set stores a reset code for an email with the given TTL.

Description: A plain SET, so re-sending a code for the same email overwrites
the previous one and restarts the TTL. Exactly one code per email is live.

Parameters:
  - context: context.Context
  - email: string (normalized)
  - code: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisResetCodeRepository) Set(context context.Context, email string, code string, ttl time.Duration) error {

	// Key by normalized email under the auth taxonomy prefix
	key := constants.RedisPrefixResetCode + email

	// Set the code with TTL (overwrites any live code for this email)
	if err := repository.client.Set(context, key, code, ttl).Err(); err != nil {
		return fmt.Errorf("redis_reset_code_set_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
Get retrieves the live reset code for an email.

Description: Returns apperr.NotFound if the code is absent or its TTL lapsed;
Redis makes the two cases indistinguishable, which is exactly the behavior the
confirmation flow wants.

Parameters:
  - context: context.Context
  - email: string (normalized)

Returns:
  - string: Stored code
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisResetCodeRepository) Get(context context.Context, email string) (string, error) {

	// Key by normalized email under the auth taxonomy prefix
	key := constants.RedisPrefixResetCode + email

	// Get the code from Redis
	code, err := repository.client.Get(context, key).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Reset code")
		}
		return "", fmt.Errorf("redis_reset_code_get_failed: %w", err)
	}

	// Return the stored code
	return code, nil
}

/*
Delete removes the reset code for an email.

Parameters:
  - context: context.Context
  - email: string (normalized)

Returns:
  - error: Deletion failures
*/
func (repository *RedisResetCodeRepository) Delete(context context.Context, email string) error {

	// Key by normalized email under the auth taxonomy prefix
	key := constants.RedisPrefixResetCode + email

	// Delete the code from Redis
	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_reset_code_delete_failed: %w", err)
	}

	// Return nil on success
	return nil
}

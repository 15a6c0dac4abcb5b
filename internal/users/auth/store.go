// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindActiveByEmail returns the active, non-deleted account with the
		given normalized email, with its role name resolved.

		Parameters:
		  - context: context.Context
		  - email: string (already passed through NormalizeEmail)

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindActiveByEmail(context context.Context, email string) (*User, error)

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
}

// # Volatile Data Access

// ResetCodeRepository defines the contract for storing volatile password
// reset codes, keyed by normalized email.
//
// Writing a code for an email that already holds one OVERWRITES the previous
// code and restarts the TTL: only the most recently issued code is valid.
type ResetCodeRepository interface {

	/*
		Set stores a reset code for an email for a limited duration.

		Parameters:
		  - context: context.Context
		  - email: string (already passed through NormalizeEmail)
		  - code: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, email string, code string, ttl time.Duration) error

	/*
		Get retrieves the live reset code for an email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - string: Stored code
		  - error: apperr.NotFound (absent or expired) or retrieval failures
	*/
	Get(context context.Context, email string) (string, error)

	/*
		Delete removes a reset code after successful use.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, email string) error
}

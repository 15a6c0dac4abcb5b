// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// MinPasswordLength is the minimum accepted length for a new password.
	// Applies only when SETTING a password; login never reveals length rules.
	MinPasswordLength = 8

	// MaxEmailLength caps email input before it reaches the database.
	MaxEmailLength = 254

	// CookieClearSkew is how far in the past cleared cookies are expired.
	// A full day absorbs client clock drift that a bare "now" would not.
	CookieClearSkew = 24 * time.Hour

	// ResetMailSubject is the subject line of the password reset email.
	ResetMailSubject = "Your password reset code"
)

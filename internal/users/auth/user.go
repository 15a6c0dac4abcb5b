// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

/*
Package auth implements the credential and session management layer.

It defines the core domain entity (User) and the logic for password
verification, token-pair issuance, cookie transport, and password recovery.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"strings"
	"time"
)

// # Domain Entities

// User represents a registered account able to authenticate against the API.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Explicitly omitted from JSON for security.
	FirstName    string     `json:"first_name"`
	RoleID       int        `json:"role_id"`
	RoleName     string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// NormalizeEmail canonicalizes an email address for lookups and cache keys.
// Lookup, reset-code storage, and reset-code confirmation must all agree on
// this form or a code set under one spelling can never be confirmed.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication
// domain. Response fields are camelCase to match the public API contract.
const (
	FieldEmail                  = "email"
	FieldPassword               = "password"
	FieldNewPassword            = "newPassword"
	FieldCode                   = "code"
	FieldToken                  = "token"
	FieldExpireTime             = "expireTime"
	FieldRefreshToken           = "refreshToken"
	FieldRefreshTokenExpireTime = "refreshTokenExpireTime"
	FieldMessage                = "message"
)

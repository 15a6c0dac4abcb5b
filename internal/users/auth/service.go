// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

/*
Package auth implements the core credential and session system.

It verifies email/password credentials against PostgreSQL, issues paired
HMAC-signed JWTs (a short-lived access token and a long-lived refresh token),
and renews access tokens through a cookie cross-checked refresh exchange.

Architecture:

  - Service: Orchestrates session logic (Login, RefreshToken).
  - ResetService: Orchestrates the password recovery flow.
  - Repository: Abstracted interfaces for Postgres (Users) and Redis (Codes).
  - Security: Leverages Bcrypt and HMAC-SHA256 signed JWTs.

Tokens are fully stateless: nothing about an issued pair is persisted, so
there is no server-side revocation. The only way to end a session early is to
clear the client's cookies and wait out the access TTL.
*/
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vhminh/atrium/internal/platform/apperr"
	"github.com/vhminh/atrium/internal/platform/sec"
	"github.com/vhminh/atrium/internal/platform/validate"
)

// # Session Errors

// Session error values. Codes and statuses are part of the public API
// contract; clients branch on them.
var (
	// ErrUnknownAccount: no active account for the email. Same client-facing
	// message as ErrBadPassword so responses never confirm which half of the
	// credentials was wrong; only the status differs.
	ErrUnknownAccount = apperr.New("INVALID_CREDENTIALS", "Invalid email or password", http.StatusBadRequest)

	// ErrBadPassword: account exists but the password (or the email's format)
	// did not check out.
	ErrBadPassword = apperr.New("INVALID_CREDENTIALS", "Invalid email or password", http.StatusUnprocessableEntity)

	// ErrRefreshTokenNotFound: the refresh cookie pair is absent.
	ErrRefreshTokenNotFound = apperr.New("REFRESH_TOKEN_NOT_FOUND", "Refresh token not found", http.StatusUnauthorized)

	// ErrRefreshTokenMismatch: the body token and cookie token disagree.
	// 403, not 401: the caller presented two credentials that contradict
	// each other, which reads as tampering rather than a stale session.
	ErrRefreshTokenMismatch = apperr.New("REFRESH_TOKEN_MISMATCH", "Refresh token mismatch", http.StatusForbidden)

	// ErrInvalidRefreshExpiry: the expiry cookie is not a parseable timestamp.
	ErrInvalidRefreshExpiry = apperr.New("INVALID_REFRESH_EXPIRY", "Invalid refresh token expiration", http.StatusBadRequest)

	// ErrRefreshTokenExpired: the refresh window has closed; full re-login required.
	ErrRefreshTokenExpired = apperr.New("REFRESH_TOKEN_EXPIRED", "Refresh token expired", http.StatusUnauthorized)

	// ErrInvalidAccessToken: the presented access token fails signature
	// verification (its expiry is deliberately NOT checked during refresh).
	ErrInvalidAccessToken = apperr.New("INVALID_ACCESS_TOKEN", "Invalid access token", http.StatusUnauthorized)
)

// # Contracts & Types

// TokenCodec defines the contract for minting and verifying signed tokens.
// [*sec.TokenCodec] satisfies it; tests substitute lighter fakes.
type TokenCodec interface {

	// Mint creates a signed JWT for the given identity with the given lifetime.
	//
	// # Returns
	//   - The compact signed token, its expiry instant, or a signing error.
	Mint(userID, email, role string, timeToLive time.Duration) (string, time.Time, error)

	// Validate parses and verifies a signed token. When checkExpiry is false
	// the signature and claims are still verified but an elapsed expiry is
	// accepted — the refresh exchange needs exactly that mode.
	Validate(tokenString string, checkExpiry bool) (*sec.AuthClaims, error)
}

// Credentials represents a freshly issued (or renewed) token pair.
type Credentials struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Service implements session establishment and renewal use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to password checking or
// the refresh state machine must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokenCodec     TokenCodec
	accessTTL      time.Duration
	refreshTTL     time.Duration
}

// NewService constructs a new session [Service] with necessary dependencies.
func NewService(userRepo UserRepository, codec TokenCodec, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		userRepository: userRepo,
		tokenCodec:     codec,
		accessTTL:      accessTTL,
		refreshTTL:     refreshTTL,
	}
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login validates user credentials and issues a fresh token pair.

Description: Normalizes the email, resolves the active account, performs
constant-time password comparison via bcrypt, and mints both tokens.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Credentials: Transport-ready token pair
  - err: ErrUnknownAccount, ErrBadPassword, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Credentials, error) {

	// Canonicalize before any lookup so the same account is always hit
	email := NormalizeEmail(input.Email)

	// A malformed email can never match an account; treated like a failed
	// password check rather than a missing account.
	if !validate.IsEmail(email) {
		return nil, ErrBadPassword
	}

	// Resolve the active account. Inactive and deleted accounts are filtered
	// at the storage layer and surface here as unknown.
	user, err := service.userRepository.FindActiveByEmail(context, email)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return nil, ErrUnknownAccount
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// Verify password hash using bcrypt's constant-time comparison
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrBadPassword
	}

	// Mint the full pair for the verified identity
	credentials, err := service.issuePair(user)
	if err != nil {
		return nil, err
	}

	return credentials, nil
}

// # Session Renewal

// RefreshInput carries everything the renewal state machine inspects: the
// body tokens plus the raw refresh cookie values read by the handler.
type RefreshInput struct {
	AccessToken  string
	RefreshToken string

	// CookieRefreshToken and CookieRefreshExpiry are the raw values of the
	// refresh cookie pair; empty strings mean the cookie was absent.
	CookieRefreshToken  string
	CookieRefreshExpiry string
}

/*
RefreshToken renews the access token against the refresh cookie pair.

Description: Walks a fixed check order — cookie presence, body/cookie token
agreement, expiry cookie parseability, refresh window, access token signature
— and only then mints a new access token. The refresh token and its expiry are
echoed back UNCHANGED: there is no rotation, a pair lives exactly one refresh
window from login.

The access token's signature is verified but its expiry is ignored; an expired
access token is the normal input here.

Parameters:
  - context: context.Context
  - input: RefreshInput

Returns:
  - *Credentials: New access pair plus the echoed refresh pair
  - err: One of the session error values, or internal failures
*/
func (service *Service) RefreshToken(context context.Context, input RefreshInput) (*Credentials, error) {

	// ── 1. Cookie presence ────────────────────────────────────────────────
	if input.CookieRefreshToken == "" || input.CookieRefreshExpiry == "" {
		return nil, ErrRefreshTokenNotFound
	}

	// ── 2. Body and cookie must agree byte-for-byte ───────────────────────
	if input.RefreshToken != input.CookieRefreshToken {
		return nil, ErrRefreshTokenMismatch
	}

	// ── 3. Expiry cookie must parse ───────────────────────────────────────
	refreshExpiresAt, err := time.Parse(time.RFC3339, input.CookieRefreshExpiry)
	if err != nil {
		return nil, ErrInvalidRefreshExpiry
	}

	// ── 4. Refresh window must still be open ──────────────────────────────
	if refreshExpiresAt.Before(time.Now()) {
		return nil, ErrRefreshTokenExpired
	}

	// ── 5. Access token signature must verify (expiry ignored) ────────────
	claims, err := service.tokenCodec.Validate(input.AccessToken, false)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}

	// ── 6. Mint a fresh access token for the proven identity ──────────────
	accessToken, accessExpiresAt, err := service.tokenCodec.Mint(
		claims.UserID(), claims.Email, claims.Role, service.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_mint_failed: %w", err)
	}

	return &Credentials{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     input.RefreshToken,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// issuePair mints the access and refresh tokens for a verified user.
func (service *Service) issuePair(user *User) (*Credentials, error) {

	accessToken, accessExpiresAt, err := service.tokenCodec.Mint(
		user.ID, user.Email, user.RoleName, service.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_mint_failed: %w", err)
	}

	refreshToken, refreshExpiresAt, err := service.tokenCodec.Mint(
		user.ID, user.Email, user.RoleName, service.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_mint_failed: %w", err)
	}

	return &Credentials{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing, OTP
// generation) from the domain logic. It acts as an Infrastructure service
// injected into the Application layer via small interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token validation failures. Callers map these onto their own HTTP-facing
// taxonomy; the sentinels themselves carry no transport semantics.
var (
	// ErrTokenMalformed indicates input that is not even a parseable JWT.
	ErrTokenMalformed = errors.New("sec: token malformed")

	// ErrTokenInvalid indicates a signature or algorithm mismatch.
	ErrTokenInvalid = errors.New("sec: token invalid")

	// ErrTokenExpired indicates a structurally valid, correctly signed token
	// whose expiry has passed.
	ErrTokenExpired = errors.New("sec: token expired")
)

// AuthClaims represents the payload embedded inside a signed token.
//
// # Why custom claims?
//
// By embedding the email and role directly inside the JWT, the authentication
// middleware can reconstruct the active user context WITHOUT querying the
// database on every single API request. The role therefore reflects the role
// at mint time; a role change only takes effect once the access token expires.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	Email string `json:"eml"`
	Role  string `json:"rol"`
}

// UserID returns the subject claim, which carries the account ID.
func (c *AuthClaims) UserID() string {
	return c.Subject
}

// TokenCodec mints and validates compact signed tokens using a symmetric
// HMAC-SHA256 secret.
//
// # Review Process
//
// Both access and refresh tokens flow through this codec. Any change to the
// signing or validation path must be reviewed by the security team.
type TokenCodec struct {
	secret   []byte
	issuer   string
	audience string
}

// NewTokenCodec creates a new TokenCodec.
//
// The secret must be non-empty; a missing signing secret is a configuration
// error that has to stop startup rather than produce forgeable tokens.
func NewTokenCodec(secret, issuer, audience string) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("sec: signing secret must not be empty")
	}
	if issuer == "" || audience == "" {
		return nil, errors.New("sec: token issuer and audience must not be empty")
	}

	return &TokenCodec{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}, nil
}

// Mint creates a new signed token for a user.
//
// # Parameters
//   - userID: The account ID, stored as the 'sub' claim.
//   - email: The account email, stored as the 'eml' claim.
//   - role: The role name at mint time, stored as the 'rol' claim.
//   - timeToLive: The duration before the token expires.
//
// # Returns
//   - The compact signed token string.
//   - The absolute expiry timestamp (UTC).
//   - An error if signing fails.
func (codec *TokenCodec) Mint(userID, email, role string, timeToLive time.Duration) (string, time.Time, error) {
	currentTime := time.Now().UTC()
	expiresAt := currentTime.Add(timeToLive)

	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    codec.issuer,
			Audience:  jwt.ClaimStrings{codec.audience},
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: email,
		Role:  role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(codec.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}

// Validate checks the signature and algorithm of a signed token and returns
// its claims.
//
// # Expiry Handling
//
// With checkExpiry=true the token must be unexpired. With checkExpiry=false
// the signature and algorithm are still enforced but expiry (and the other
// time-based claims) are intentionally ignored — this is the refresh-flow
// mode that recovers the claim set from an already-expired access token.
//
// # Algorithm Pinning
//
// The algorithm identifier is verified before the signature path is trusted.
// A token signed with "none" or any non-HS256 method is rejected with
// [ErrTokenInvalid], closing the classic alg-confusion hole.
func (codec *TokenCodec) Validate(tokenString string, checkExpiry bool) (*AuthClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(codec.issuer),
		jwt.WithAudience(codec.audience),
	}
	if !checkExpiry {
		// Signature-only mode: skip exp/nbf/iat validation entirely.
		options = append(options, jwt.WithoutClaimsValidation())
	}

	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		// The key is only ever released for the HMAC family.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return codec.secret, nil
	}, options...)

	if err != nil {
		return nil, classifyTokenError(err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	// WithoutClaimsValidation skips issuer/audience along with the time-based
	// claims; only the latter may be ignored. Recheck the scope by hand.
	if !checkExpiry {
		if claims.Issuer != codec.issuer || !hasAudience(claims.Audience, codec.audience) {
			return nil, ErrTokenInvalid
		}
	}

	return claims, nil
}

func hasAudience(audiences jwt.ClaimStrings, want string) bool {
	for _, audience := range audiences {
		if audience == want {
			return true
		}
	}
	return false
}

// classifyTokenError maps jwt library failures onto the package sentinels.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	default:
		// Signature mismatch, unexpected algorithm, unverifiable token.
		return fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
}

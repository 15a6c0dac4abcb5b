// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

/*
Package auth provides the HTTP delivery layer for the session lifecycle.

It implements the gateway for authentication: login, cookie-backed refresh,
logout, and the password recovery endpoints.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Writes the token cookie pairs and reads them back on refresh.
  - Verification: Enforces strict input validation before passing to services.

This layer is strictly responsible for transport concerns (status codes,
headers, cookies, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vhminh/atrium/internal/platform/middleware"
	requestutil "github.com/vhminh/atrium/internal/platform/request"
	"github.com/vhminh/atrium/internal/platform/respond"
	"github.com/vhminh/atrium/internal/platform/sec"
	"github.com/vhminh/atrium/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the session lifecycle entry points (Login, Refresh,
// Logout) and the password recovery callbacks.
type Handler struct {
	sessionService *Service
	resetService   *ResetService
	cookies        *CookieTransport
}

// NewHandler constructs a new [Handler] with its service dependencies.
func NewHandler(sessions *Service, resets *ResetService, cookies *CookieTransport) *Handler {
	return &Handler{
		sessionService: sessions,
		resetService:   resets,
		cookies:        cookies,
	}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /                : Authenticates and issues the token cookie pairs.
//   - POST /refresh-token   : Renews the access pair against the refresh cookies.
//   - POST /logout          : Clears all session cookies.
//   - POST /send-reset-code : Mails a one-time password reset code.
//   - POST /confirm-reset   : Exchanges a reset code for a new password.
//   - GET  /me              : Echoes the authenticated identity (any role).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/", handler.login)
	router.Post("/refresh-token", handler.refresh)
	router.Post("/logout", handler.logout)
	router.Post("/send-reset-code", handler.sendResetCode)
	router.Post("/confirm-reset", handler.confirmReset)

	// Protected endpoints. Viewer is the floor of the role hierarchy, so any
	// authenticated account qualifies.
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleViewer))
		r.Get("/me", handler.me)
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// refreshRequest names its access-token field differently from the response
// envelope: clients send {accessToken, refreshToken} and receive {token, ...}.
type refreshRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type sendResetCodeRequest struct {
	Email string `json:"email"`
}

type confirmResetRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// credentialsPayload serializes an issued pair into the response body.
// Field names are part of the public API contract.
func credentialsPayload(credentials *Credentials) map[string]string {
	return map[string]string{
		FieldToken:                  credentials.AccessToken,
		FieldExpireTime:             credentials.AccessExpiresAt.UTC().Format(time.RFC3339),
		FieldRefreshToken:           credentials.RefreshToken,
		FieldRefreshTokenExpireTime: credentials.RefreshExpiresAt.UTC().Format(time.RFC3339),
	}
}

/*
Login authenticates a user and establishes a cookie session.

POST /api/v1/auth

Description: Verifies credentials, mints the access/refresh token pair, sets
all four session cookies, and echoes the pair in the body for non-browser
clients.

Credential validation lives entirely in the service so that its 400-vs-422
contract holds for every transport; the handler only rejects undecodable JSON.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Credentials: token, expireTime, refreshToken, refreshTokenExpireTime
  - 400: INVALID_CREDENTIALS: No account for the email
  - 422: INVALID_CREDENTIALS: Wrong password or malformed email
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	credentials, err := handler.sessionService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookies.SetSession(writer, credentials)
	respond.OK(writer, credentialsPayload(credentials))
}

/*
Refresh renews the access token using the refresh cookie pair.

POST /api/v1/auth/refresh-token

Description: Reads the refresh cookie pair, cross-checks it against the body,
and on success re-sets ONLY the access cookie pair; the refresh cookies are
left untouched (no rotation).

Request:
  - Body: refreshRequest (AccessToken, RefreshToken)

Response:
  - 200: Credentials: fresh access pair, refresh pair echoed unchanged
  - 400: INVALID_REFRESH_EXPIRY: Expiry cookie not a valid timestamp
  - 401: REFRESH_TOKEN_NOT_FOUND / REFRESH_TOKEN_EXPIRED / INVALID_ACCESS_TOKEN
  - 403: REFRESH_TOKEN_MISMATCH: Body and cookie tokens disagree
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	cookieToken, cookieExpiry, _ := handler.cookies.Refresh.Read(request)

	credentials, err := handler.sessionService.RefreshToken(request.Context(), RefreshInput{
		AccessToken:         input.AccessToken,
		RefreshToken:        input.RefreshToken,
		CookieRefreshToken:  cookieToken,
		CookieRefreshExpiry: cookieExpiry,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Only the access pair changes; the refresh cookies stay as they are
	handler.cookies.Access.Set(writer, credentials.AccessToken, credentials.AccessExpiresAt)
	respond.OK(writer, credentialsPayload(credentials))
}

/*
Logout terminates the cookie session.

POST /api/v1/auth/logout

Description: Clears all four session cookies. Tokens are stateless, so there
is nothing server-side to revoke; the operation is idempotent and succeeds
whether or not any cookies were present.

Response:
  - 200: Success: Cookies cleared
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.cookies.ClearSession(writer)
	respond.OK(writer, map[string]string{
		FieldMessage: "Logged out successfully",
	})
}

/*
SendResetCode initiates the password recovery flow.

POST /api/v1/auth/send-reset-code

Description: Emails a one-time numeric code to the account's address. Any
previously live code for the email is overwritten.

Request:
  - Body: sendResetCodeRequest (Email)

Response:
  - 200: Success: Code sent
  - 400: VALIDATION_ERROR: Malformed email
  - 404: NOT_FOUND: No active account for the email
  - 500: DELIVERY_FAILED: Mail provider rejected the message
*/
func (handler *Handler) sendResetCode(writer http.ResponseWriter, request *http.Request) {
	var input sendResetCodeRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		MaxLen(FieldEmail, input.Email, MaxEmailLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.resetService.SendResetCode(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "A reset code has been sent to your email.",
	})
}

/*
ConfirmReset completes the password recovery flow.

POST /api/v1/auth/confirm-reset

Description: Validates the reset code and updates the account's password.
The code is consumed on success and stays live (within its TTL) on failure.

Request:
  - Body: confirmResetRequest (Email, Code, NewPassword)

Response:
  - 200: Success: Password updated
  - 400: INVALID_RESET_CODE: Wrong, expired, or already-used code
  - 400: VALIDATION_ERROR: Weak password or malformed input
*/
func (handler *Handler) confirmReset(writer http.ResponseWriter, request *http.Request) {
	var input confirmResetRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldCode, input.Code).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.resetService.ConfirmResetPassword(
		request.Context(), input.Email, input.Code, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}

/*
Me echoes the authenticated identity from the verified token claims.

GET /api/v1/auth/me

Description: No storage round-trip; the response reflects exactly what the
presented access token asserts.

Response:
  - 200: Identity: id, email, role
  - 401: UNAUTHORIZED: Missing or invalid token
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		"id":       claims.UserID(),
		FieldEmail: claims.Email,
		"role":     claims.Role,
	})
}

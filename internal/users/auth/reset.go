// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/vhminh/atrium/internal/platform/apperr"
	"github.com/vhminh/atrium/internal/platform/ctxutil"
	"github.com/vhminh/atrium/internal/platform/mail"
	"github.com/vhminh/atrium/internal/platform/sec"
)

// # Recovery Errors

var (
	// ErrInvalidOrExpiredCode: the code is wrong, was never issued, lapsed, or
	// was already consumed. One message for all four so the response never
	// tells an attacker which guess came close.
	ErrInvalidOrExpiredCode = apperr.New("INVALID_RESET_CODE", "Invalid or expired reset code", http.StatusBadRequest)

	// ErrDeliveryFailed: the reset email could not be handed to the mail provider.
	ErrDeliveryFailed = apperr.New("DELIVERY_FAILED", "Failed to send reset code", http.StatusInternalServerError)
)

// # Password Recovery

// ResetService implements the two-step password recovery flow: a short
// numeric code is mailed to the account's address, then exchanged together
// with the new password.
type ResetService struct {
	userRepository UserRepository
	codeRepository ResetCodeRepository
	mailer         mail.Sender
	codeLength     int
	codeTTL        time.Duration
}

// NewResetService constructs a new [ResetService] with necessary dependencies.
func NewResetService(
	userRepo UserRepository,
	codeRepo ResetCodeRepository,
	mailer mail.Sender,
	codeLength int,
	codeTTL time.Duration,
) *ResetService {
	return &ResetService{
		userRepository: userRepo,
		codeRepository: codeRepo,
		mailer:         mailer,
		codeLength:     codeLength,
		codeTTL:        codeTTL,
	}
}

/*
SendResetCode generates, stores, and emails a one-time reset code.

Description: Resolves the active account, generates a fresh numeric code from
a CSPRNG, caches it under the normalized email (overwriting any live code and
restarting the TTL), and mails it. The code itself never appears in responses
or logs.

NOTE: Unknown emails return 404 here, unlike login's 400. The endpoint
confirms account existence to whoever asks; callers wanting enumeration
resistance must rate-limit upstream.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: apperr.NotFound, ErrDeliveryFailed, or internal failures
*/
func (service *ResetService) SendResetCode(context context.Context, email string) error {

	// Canonicalize: the cache key must match what ConfirmResetPassword derives
	email = NormalizeEmail(email)

	// Resolve the account; unknown or inactive accounts surface as 404
	user, err := service.userRepository.FindActiveByEmail(context, email)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return apperr.NotFound("Account")
		}
		return fmt.Errorf("auth_reset_lookup_failed: %w", err)
	}

	// Generate the one-time numeric code from crypto/rand
	code, err := sec.GenerateNumericCode(service.codeLength)
	if err != nil {
		return fmt.Errorf("auth_reset_generate_code_failed: %w", err)
	}

	// Cache before mailing so a received email always references a live code
	if err := service.codeRepository.Set(context, email, code, service.codeTTL); err != nil {
		return fmt.Errorf("auth_reset_save_code_failed: %w", err)
	}

	// Deliver. A cached-but-undelivered code is harmless: it expires on its own.
	message := mail.Message{
		To:      user.Email,
		Subject: ResetMailSubject,
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour password reset code is: %s\n\nIt expires in %d minutes. If you did not request this, ignore this email.\n",
			user.FirstName, code, int(service.codeTTL.Minutes())),
	}

	if err := service.mailer.Send(context, message); err != nil {
		ctxutil.GetLogger(context).ErrorContext(context, "reset_code_delivery_failed",
			"email", user.Email, "cause", err.Error())
		return ErrDeliveryFailed.WithCause(err)
	}

	return nil
}

/*
ConfirmResetPassword exchanges a live reset code for a new password.

Description: Fetches the live code for the email, compares it in constant
time, hashes the new password, persists it, and only THEN consumes the code.
Deleting after the update (not before) means a failed persistence attempt
leaves the code usable for a retry within its TTL; a successful one makes the
code single-use.

Parameters:
  - context: context.Context
  - email: string
  - code: string
  - newPassword: string

Returns:
  - err: ErrInvalidOrExpiredCode or internal failures
*/
func (service *ResetService) ConfirmResetPassword(context context.Context, email, code, newPassword string) error {

	// Canonicalize: must mirror SendResetCode's key derivation
	email = NormalizeEmail(email)

	// Fetch the live code; absent and expired are indistinguishable
	storedCode, err := service.codeRepository.Get(context, email)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return ErrInvalidOrExpiredCode
		}
		return fmt.Errorf("auth_reset_fetch_code_failed: %w", err)
	}

	// Constant-time comparison; wrong guesses get the same answer as expiry
	if subtle.ConstantTimeCompare([]byte(storedCode), []byte(code)) != 1 {
		return ErrInvalidOrExpiredCode
	}

	// Resolve the account the code belongs to
	user, err := service.userRepository.FindActiveByEmail(context, email)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return apperr.NotFound("Account")
		}
		return fmt.Errorf("auth_reset_confirm_lookup_failed: %w", err)
	}

	// Hash the new password securely
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_reset_hash_failed: %w", err)
	}

	// Persist the new hash BEFORE consuming the code
	if err := service.userRepository.UpdatePassword(context, user.ID, hashedPassword); err != nil {
		return fmt.Errorf("auth_reset_update_password_failed: %w", err)
	}

	// Consume the code. Best-effort: if the delete fails the code simply
	// rides out its remaining TTL.
	_ = service.codeRepository.Delete(context, email)

	return nil
}

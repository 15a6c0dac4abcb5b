// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vhminh/atrium/internal/platform/apperr"
	"github.com/vhminh/atrium/internal/platform/mail"
	"github.com/vhminh/atrium/internal/platform/sec"
	"github.com/vhminh/atrium/internal/users/auth"
)

// # Test Fixtures

// fakeCodeRepo is an in-memory ResetCodeRepository with a controllable clock,
// so expiry can be tested without sleeping.
type fakeCodeRepo struct {
	now    func() time.Time
	codes  map[string]storedCode
	setErr error
}

type storedCode struct {
	code      string
	expiresAt time.Time
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{
		now:   time.Now,
		codes: make(map[string]storedCode),
	}
}

func (f *fakeCodeRepo) Set(_ context.Context, email, code string, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.codes[email] = storedCode{code: code, expiresAt: f.now().Add(ttl)}
	return nil
}

func (f *fakeCodeRepo) Get(_ context.Context, email string) (string, error) {
	entry, ok := f.codes[email]
	if !ok || f.now().After(entry.expiresAt) {
		return "", apperr.NotFound("Reset code")
	}
	return entry.code, nil
}

func (f *fakeCodeRepo) Delete(_ context.Context, email string) error {
	delete(f.codes, email)
	return nil
}

// fakeMailer records sent messages and can simulate provider failures.
type fakeMailer struct {
	sent    []mail.Message
	sendErr error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

// lastCode extracts the code the service cached for an email. Tests read the
// cache rather than parse the email body.
func lastCode(t *testing.T, repo *fakeCodeRepo, email string) string {
	t.Helper()
	entry, ok := repo.codes[email]
	require.True(t, ok, "no code cached for %s", email)
	return entry.code
}

func newResetFixture(t *testing.T) (*auth.ResetService, *fakeUserRepo, *fakeCodeRepo, *fakeMailer) {
	t.Helper()
	users := newFakeUserRepo()
	codes := newFakeCodeRepo()
	mailer := &fakeMailer{}
	service := auth.NewResetService(users, codes, mailer, 6, 5*time.Minute)
	return service, users, codes, mailer
}

// # Send Reset Code

/*
TestSendResetCode_Success caches a 6-digit code and mails it to the account.
*/
func TestSendResetCode_Success(t *testing.T) {
	service, users, codes, mailer := newResetFixture(t)
	seedUser(t, users, "minh@atrium.dev", "old-password")

	err := service.SendResetCode(context.Background(), "minh@atrium.dev")
	require.NoError(t, err)

	code := lastCode(t, codes, "minh@atrium.dev")
	assert.Len(t, code, 6)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "minh@atrium.dev", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Body, code)
}

/*
TestSendResetCode_NormalizesEmail caches under the canonical form regardless
of the caller's spelling.
*/
func TestSendResetCode_NormalizesEmail(t *testing.T) {
	service, users, codes, _ := newResetFixture(t)
	seedUser(t, users, "minh@atrium.dev", "old-password")

	err := service.SendResetCode(context.Background(), "  MINH@ATRIUM.DEV ")
	require.NoError(t, err)

	// Cached under the normalized key, so confirmation can find it
	lastCode(t, codes, "minh@atrium.dev")
}

/*
TestSendResetCode_UnknownEmail returns 404 for accounts that do not exist.
*/
func TestSendResetCode_UnknownEmail(t *testing.T) {
	service, _, codes, mailer := newResetFixture(t)

	err := service.SendResetCode(context.Background(), "ghost@atrium.dev")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	assert.Empty(t, codes.codes)
	assert.Empty(t, mailer.sent)
}

/*
TestSendResetCode_MailerFailure surfaces DELIVERY_FAILED; the cached code is
left to ride out its TTL.
*/
func TestSendResetCode_MailerFailure(t *testing.T) {
	service, users, _, mailer := newResetFixture(t)
	seedUser(t, users, "minh@atrium.dev", "old-password")
	mailer.sendErr = errors.New("postmark unreachable")

	err := service.SendResetCode(context.Background(), "minh@atrium.dev")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "DELIVERY_FAILED"))
}

/*
TestSendResetCode_OverwritesPreviousCode: only the most recent code is live.
*/
func TestSendResetCode_OverwritesPreviousCode(t *testing.T) {
	service, users, codes, _ := newResetFixture(t)
	user := seedUser(t, users, "minh@atrium.dev", "old-password")

	require.NoError(t, service.SendResetCode(context.Background(), "minh@atrium.dev"))
	firstCode := lastCode(t, codes, "minh@atrium.dev")

	require.NoError(t, service.SendResetCode(context.Background(), "minh@atrium.dev"))
	secondCode := lastCode(t, codes, "minh@atrium.dev")

	// The superseded code no longer confirms (guard against the rare
	// random collision between the two draws)
	if firstCode != secondCode {
		err := service.ConfirmResetPassword(context.Background(), "minh@atrium.dev", firstCode, "brand-new-password")
		assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredCode)
	}

	// The latest code works
	err := service.ConfirmResetPassword(context.Background(), "minh@atrium.dev", secondCode, "brand-new-password")
	require.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash("brand-new-password", user.PasswordHash))
}

// # Confirm Reset Password

/*
TestConfirmResetPassword_Success updates the hash and consumes the code.
*/
func TestConfirmResetPassword_Success(t *testing.T) {
	service, users, codes, _ := newResetFixture(t)
	user := seedUser(t, users, "minh@atrium.dev", "old-password")

	require.NoError(t, service.SendResetCode(context.Background(), "minh@atrium.dev"))
	code := lastCode(t, codes, "minh@atrium.dev")

	err := service.ConfirmResetPassword(context.Background(), "minh@atrium.dev", code, "brand-new-password")
	require.NoError(t, err)

	// Old password out, new password in
	assert.False(t, sec.CheckPasswordHash("old-password", user.PasswordHash))
	assert.True(t, sec.CheckPasswordHash("brand-new-password", user.PasswordHash))

	// Single use: the same code cannot be replayed
	err = service.ConfirmResetPassword(context.Background(), "minh@atrium.dev", code, "another-password")
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredCode)
	assert.True(t, sec.CheckPasswordHash("brand-new-password", user.PasswordHash))
}

/*
TestConfirmResetPassword_WrongCode rejects a bad guess and keeps the real
code live for a retry.
*/
func TestConfirmResetPassword_WrongCode(t *testing.T) {
	service, users, codes, _ := newResetFixture(t)
	user := seedUser(t, users, "minh@atrium.dev", "old-password")

	require.NoError(t, service.SendResetCode(context.Background(), "minh@atrium.dev"))
	code := lastCode(t, codes, "minh@atrium.dev")

	wrongCode := "000000"
	if wrongCode == code {
		wrongCode = "000001"
	}

	err := service.ConfirmResetPassword(context.Background(), "minh@atrium.dev", wrongCode, "brand-new-password")
	require.ErrorIs(t, err, auth.ErrInvalidOrExpiredCode)

	// Password untouched, real code still valid
	assert.True(t, sec.CheckPasswordHash("old-password", user.PasswordHash))
	require.NoError(t, service.ConfirmResetPassword(context.Background(), "minh@atrium.dev", code, "brand-new-password"))
}

/*
TestConfirmResetPassword_ExpiredCode: a code past its TTL behaves exactly like
a wrong one.
*/
func TestConfirmResetPassword_ExpiredCode(t *testing.T) {
	service, users, codes, _ := newResetFixture(t)
	seedUser(t, users, "minh@atrium.dev", "old-password")

	require.NoError(t, service.SendResetCode(context.Background(), "minh@atrium.dev"))
	code := lastCode(t, codes, "minh@atrium.dev")

	// Advance the repo clock past the 5 minute TTL
	codes.now = func() time.Time { return time.Now().Add(6 * time.Minute) }

	err := service.ConfirmResetPassword(context.Background(), "minh@atrium.dev", code, "brand-new-password")
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredCode)
}

/*
TestConfirmResetPassword_NoCodeIssued rejects confirmation when nothing was sent.
*/
func TestConfirmResetPassword_NoCodeIssued(t *testing.T) {
	service, users, _, _ := newResetFixture(t)
	seedUser(t, users, "minh@atrium.dev", "old-password")

	err := service.ConfirmResetPassword(context.Background(), "minh@atrium.dev", "123456", "brand-new-password")
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredCode)
}

/*
TestConfirmResetPassword_PersistFailureKeepsCode: if the password update
fails, the code is NOT consumed and a retry can succeed.
*/
func TestConfirmResetPassword_PersistFailureKeepsCode(t *testing.T) {
	service, users, codes, _ := newResetFixture(t)
	user := seedUser(t, users, "minh@atrium.dev", "old-password")

	require.NoError(t, service.SendResetCode(context.Background(), "minh@atrium.dev"))
	code := lastCode(t, codes, "minh@atrium.dev")

	users.updateErr = errors.New("connection reset")
	err := service.ConfirmResetPassword(context.Background(), "minh@atrium.dev", code, "brand-new-password")
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrInvalidOrExpiredCode)

	// Storage recovers; the same code still works
	users.updateErr = nil
	require.NoError(t, service.ConfirmResetPassword(context.Background(), "minh@atrium.dev", code, "brand-new-password"))
	assert.True(t, sec.CheckPasswordHash("brand-new-password", user.PasswordHash))
}

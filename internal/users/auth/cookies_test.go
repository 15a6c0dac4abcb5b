// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vhminh/atrium/internal/users/auth"
)

func testPair() auth.CookiePair {
	return auth.CookiePair{TokenName: "access_token", ExpireName: "access_token_expire"}
}

// cookieByName digs a named cookie out of a recorded response.
func cookieByName(t *testing.T, recorder *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

/*
TestCookiePair_Set writes the HttpOnly token cookie and the readable expiry
cookie with the contractual attributes.
*/
func TestCookiePair_Set(t *testing.T) {
	recorder := httptest.NewRecorder()
	expiresAt := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)

	testPair().Set(recorder, "signed-token-value", expiresAt)

	tokenCookie := cookieByName(t, recorder, "access_token")
	assert.Equal(t, "signed-token-value", tokenCookie.Value)
	assert.True(t, tokenCookie.HttpOnly)
	assert.True(t, tokenCookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, tokenCookie.SameSite)
	assert.Equal(t, "/", tokenCookie.Path)
	assert.WithinDuration(t, expiresAt, tokenCookie.Expires, time.Second)

	expireCookie := cookieByName(t, recorder, "access_token_expire")
	assert.False(t, expireCookie.HttpOnly, "expiry cookie must be readable by the frontend")
	assert.True(t, expireCookie.Secure)

	// The value is the expiry itself, RFC 3339
	parsed, err := time.Parse(time.RFC3339, expireCookie.Value)
	require.NoError(t, err)
	assert.WithinDuration(t, expiresAt, parsed, time.Second)
}

/*
TestCookiePair_Clear overwrites both cookies with empty values expiring well
in the past.
*/
func TestCookiePair_Clear(t *testing.T) {
	recorder := httptest.NewRecorder()
	testPair().Clear(recorder)

	for _, name := range []string{"access_token", "access_token_expire"} {
		cookie := cookieByName(t, recorder, name)
		assert.Empty(t, cookie.Value)
		assert.True(t, cookie.Expires.Before(time.Now().Add(-23*time.Hour)), "cookie %q not expired far enough", name)
	}
}

/*
TestCookiePair_Read round-trips through an actual request and distinguishes
the partial-presence cases.
*/
func TestCookiePair_Read(t *testing.T) {
	pair := testPair()
	expiry := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)

	t.Run("both_present", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/", nil)
		request.AddCookie(&http.Cookie{Name: "access_token", Value: "tok"})
		request.AddCookie(&http.Cookie{Name: "access_token_expire", Value: expiry})

		token, rawExpiry, ok := pair.Read(request)
		assert.True(t, ok)
		assert.Equal(t, "tok", token)
		assert.Equal(t, expiry, rawExpiry)
	})

	t.Run("token_only", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/", nil)
		request.AddCookie(&http.Cookie{Name: "access_token", Value: "tok"})

		token, rawExpiry, ok := pair.Read(request)
		assert.False(t, ok)
		assert.Equal(t, "tok", token)
		assert.Empty(t, rawExpiry)
	})

	t.Run("none_present", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/", nil)

		token, rawExpiry, ok := pair.Read(request)
		assert.False(t, ok)
		assert.Empty(t, token)
		assert.Empty(t, rawExpiry)
	})
}

/*
TestCookieTransport_SetSession writes all four cookies from one credential set.
*/
func TestCookieTransport_SetSession(t *testing.T) {
	transport := auth.NewCookieTransport(
		"access_token", "access_token_expire",
		"refresh_token", "refresh_token_expire",
	)

	recorder := httptest.NewRecorder()
	transport.SetSession(recorder, &auth.Credentials{
		AccessToken:      "access-jwt",
		AccessExpiresAt:  time.Now().Add(2 * time.Hour),
		RefreshToken:     "refresh-jwt",
		RefreshExpiresAt: time.Now().Add(168 * time.Hour),
	})

	assert.Equal(t, "access-jwt", cookieByName(t, recorder, "access_token").Value)
	assert.Equal(t, "refresh-jwt", cookieByName(t, recorder, "refresh_token").Value)
	cookieByName(t, recorder, "access_token_expire")
	cookieByName(t, recorder, "refresh_token_expire")
}

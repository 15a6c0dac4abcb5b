// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vhminh/atrium/internal/platform/middleware"
	"github.com/vhminh/atrium/internal/users/auth"
)

// # End-to-End Fixture

// newAuthRouter assembles the auth routes behind the same middleware slice
// the real server mounts: cookie injection first, then authentication.
func newAuthRouter(t *testing.T) (http.Handler, *fakeUserRepo, *fakeCodeRepo, *fakeMailer) {
	t.Helper()

	users := newFakeUserRepo()
	codes := newFakeCodeRepo()
	mailer := &fakeMailer{}
	codec := testCodec(t)

	sessionService := auth.NewService(users, codec, 2*time.Hour, 168*time.Hour)
	resetService := auth.NewResetService(users, codes, mailer, 6, 5*time.Minute)
	cookies := auth.NewCookieTransport(
		"access_token", "access_token_expire",
		"refresh_token", "refresh_token_expire",
	)

	handler := auth.NewHandler(sessionService, resetService, cookies)

	router := chi.NewRouter()
	router.Use(middleware.CookieTokenInjector("access_token"))
	router.Use(middleware.Authenticate(codec))
	router.Mount("/api/v1/auth", handler.Routes())

	return router, users, codes, mailer
}

func postJSON(t *testing.T, router http.Handler, path string, payload any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

// decodeData unmarshals the success envelope's data object.
func decodeData(t *testing.T, recorder *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Data
}

// decodeError unmarshals the error envelope.
func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var envelope struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Code, envelope.Error
}

func responseCookies(recorder *httptest.ResponseRecorder) map[string]*http.Cookie {
	byName := make(map[string]*http.Cookie)
	for _, cookie := range recorder.Result().Cookies() {
		byName[cookie.Name] = cookie
	}
	return byName
}

// # Login Endpoint

/*
TestHTTP_Login_Success sets all four session cookies and echoes the pair in
the contractual body fields.
*/
func TestHTTP_Login_Success(t *testing.T) {
	router, users, _, _ := newAuthRouter(t)
	seedUser(t, users, "minh@atrium.dev", "s3cret-password")

	recorder := postJSON(t, router, "/api/v1/auth/", map[string]string{
		"email": "minh@atrium.dev", "password": "s3cret-password",
	}, nil)

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	// Body carries the four contractual fields
	data := decodeData(t, recorder)
	assert.NotEmpty(t, data["token"])
	assert.NotEmpty(t, data["refreshToken"])

	for _, field := range []string{"expireTime", "refreshTokenExpireTime"} {
		_, err := time.Parse(time.RFC3339, data[field])
		assert.NoError(t, err, "field %s not RFC3339: %q", field, data[field])
	}

	// All four cookies present; body and cookie tokens agree
	cookies := responseCookies(recorder)
	for _, name := range []string{"access_token", "access_token_expire", "refresh_token", "refresh_token_expire"} {
		require.Contains(t, cookies, name)
	}
	assert.Equal(t, data["token"], cookies["access_token"].Value)
	assert.Equal(t, data["refreshToken"], cookies["refresh_token"].Value)
	assert.True(t, cookies["access_token"].HttpOnly)
	assert.False(t, cookies["access_token_expire"].HttpOnly)
}

/*
TestHTTP_Login_BareMountPath accepts a POST to the mount path without the
trailing slash.
*/
func TestHTTP_Login_BareMountPath(t *testing.T) {
	router, users, _, _ := newAuthRouter(t)
	seedUser(t, users, "minh@atrium.dev", "s3cret-password")

	recorder := postJSON(t, router, "/api/v1/auth", map[string]string{
		"email": "minh@atrium.dev", "password": "s3cret-password",
	}, nil)

	assert.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
}

/*
TestHTTP_Login_Failures: unknown email and wrong password return different
statuses but byte-identical error bodies.
*/
func TestHTTP_Login_Failures(t *testing.T) {
	router, users, _, _ := newAuthRouter(t)
	seedUser(t, users, "minh@atrium.dev", "s3cret-password")

	unknown := postJSON(t, router, "/api/v1/auth/", map[string]string{
		"email": "ghost@atrium.dev", "password": "s3cret-password",
	}, nil)
	wrong := postJSON(t, router, "/api/v1/auth/", map[string]string{
		"email": "minh@atrium.dev", "password": "nope",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, wrong.Code)

	unknownCode, unknownMessage := decodeError(t, unknown)
	wrongCode, wrongMessage := decodeError(t, wrong)
	assert.Equal(t, "INVALID_CREDENTIALS", unknownCode)
	assert.Equal(t, unknownCode, wrongCode)
	assert.Equal(t, unknownMessage, wrongMessage)

	// No session cookies on failure
	assert.Empty(t, unknown.Result().Cookies())
}

// # Refresh Endpoint

func loginOverHTTP(t *testing.T, router http.Handler) (map[string]string, []*http.Cookie) {
	t.Helper()
	recorder := postJSON(t, router, "/api/v1/auth/", map[string]string{
		"email": "minh@atrium.dev", "password": "s3cret-password",
	}, nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	return decodeData(t, recorder), recorder.Result().Cookies()
}

/*
TestHTTP_Refresh_Success renews the access cookies and leaves the refresh
cookies untouched.
*/
func TestHTTP_Refresh_Success(t *testing.T) {
	router, users, _, _ := newAuthRouter(t)
	seedUser(t, users, "minh@atrium.dev", "s3cret-password")

	session, cookies := loginOverHTTP(t, router)

	recorder := postJSON(t, router, "/api/v1/auth/refresh-token", map[string]string{
		"accessToken":  session["token"],
		"refreshToken": session["refreshToken"],
	}, cookies)

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	data := decodeData(t, recorder)
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, session["refreshToken"], data["refreshToken"], "refresh token must be echoed unchanged")

	// Only the access pair is re-set
	refreshed := responseCookies(recorder)
	assert.Contains(t, refreshed, "access_token")
	assert.Contains(t, refreshed, "access_token_expire")
	assert.NotContains(t, refreshed, "refresh_token")
	assert.NotContains(t, refreshed, "refresh_token_expire")
}

/*
TestHTTP_Refresh_Failures maps each broken precondition onto its status.
*/
func TestHTTP_Refresh_Failures(t *testing.T) {
	router, users, _, _ := newAuthRouter(t)
	seedUser(t, users, "minh@atrium.dev", "s3cret-password")

	session, cookies := loginOverHTTP(t, router)

	t.Run("no_cookies", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/v1/auth/refresh-token", map[string]string{
			"accessToken":  session["token"],
			"refreshToken": session["refreshToken"],
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		code, _ := decodeError(t, recorder)
		assert.Equal(t, "REFRESH_TOKEN_NOT_FOUND", code)
	})

	t.Run("body_cookie_mismatch", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/v1/auth/refresh-token", map[string]string{
			"accessToken":  session["token"],
			"refreshToken": "someone-elses-token",
		}, cookies)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
		code, _ := decodeError(t, recorder)
		assert.Equal(t, "REFRESH_TOKEN_MISMATCH", code)
	})

	t.Run("corrupted_expiry_cookie", func(t *testing.T) {
		mangled := make([]*http.Cookie, 0, len(cookies))
		for _, cookie := range cookies {
			copied := *cookie
			if copied.Name == "refresh_token_expire" {
				copied.Value = "garbage"
			}
			mangled = append(mangled, &copied)
		}
		recorder := postJSON(t, router, "/api/v1/auth/refresh-token", map[string]string{
			"accessToken":  session["token"],
			"refreshToken": session["refreshToken"],
		}, mangled)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		code, _ := decodeError(t, recorder)
		assert.Equal(t, "INVALID_REFRESH_EXPIRY", code)
	})
}

// # Logout Endpoint

/*
TestHTTP_Logout clears all four cookies and is idempotent: a second logout
with no cookies at all behaves identically.
*/
func TestHTTP_Logout(t *testing.T) {
	router, users, _, _ := newAuthRouter(t)
	seedUser(t, users, "minh@atrium.dev", "s3cret-password")

	_, cookies := loginOverHTTP(t, router)

	first := postJSON(t, router, "/api/v1/auth/logout", map[string]string{}, cookies)
	require.Equal(t, http.StatusOK, first.Code)

	cleared := responseCookies(first)
	for _, name := range []string{"access_token", "access_token_expire", "refresh_token", "refresh_token_expire"} {
		require.Contains(t, cleared, name)
		assert.Empty(t, cleared[name].Value)
		assert.True(t, cleared[name].Expires.Before(time.Now()), "cookie %q not expired", name)
	}

	// No session at all: same outcome
	second := postJSON(t, router, "/api/v1/auth/logout", map[string]string{}, nil)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Len(t, second.Result().Cookies(), 4)
}

// # Reset Endpoints

/*
TestHTTP_SendResetCode validates input and reports unknown accounts as 404.
*/
func TestHTTP_SendResetCode(t *testing.T) {
	router, users, _, mailer := newAuthRouter(t)
	seedUser(t, users, "minh@atrium.dev", "s3cret-password")

	t.Run("success", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/v1/auth/send-reset-code", map[string]string{
			"email": "minh@atrium.dev",
		}, nil)
		assert.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
		assert.Len(t, mailer.sent, 1)
	})

	t.Run("malformed_email", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/v1/auth/send-reset-code", map[string]string{
			"email": "not-an-email",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		code, _ := decodeError(t, recorder)
		assert.Equal(t, "VALIDATION_ERROR", code)
	})

	t.Run("unknown_account", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/v1/auth/send-reset-code", map[string]string{
			"email": "ghost@atrium.dev",
		}, nil)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

/*
TestHTTP_ConfirmReset exercises the full recovery loop over the wire: send,
confirm, then login with the new password.
*/
func TestHTTP_ConfirmReset(t *testing.T) {
	router, users, codes, _ := newAuthRouter(t)
	seedUser(t, users, "minh@atrium.dev", "s3cret-password")

	sendRecorder := postJSON(t, router, "/api/v1/auth/send-reset-code", map[string]string{
		"email": "minh@atrium.dev",
	}, nil)
	require.Equal(t, http.StatusOK, sendRecorder.Code)
	code := lastCode(t, codes, "minh@atrium.dev")

	t.Run("weak_password_rejected", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/v1/auth/confirm-reset", map[string]string{
			"email": "minh@atrium.dev", "code": code, "newPassword": "short",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		errCode, _ := decodeError(t, recorder)
		assert.Equal(t, "VALIDATION_ERROR", errCode)
	})

	t.Run("wrong_code_rejected", func(t *testing.T) {
		wrongCode := "000000"
		if wrongCode == code {
			wrongCode = "000001"
		}
		recorder := postJSON(t, router, "/api/v1/auth/confirm-reset", map[string]string{
			"email": "minh@atrium.dev", "code": wrongCode, "newPassword": "brand-new-password",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		errCode, _ := decodeError(t, recorder)
		assert.Equal(t, "INVALID_RESET_CODE", errCode)
	})

	t.Run("success_then_login", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/v1/auth/confirm-reset", map[string]string{
			"email": "minh@atrium.dev", "code": code, "newPassword": "brand-new-password",
		}, nil)
		require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

		// Old password now fails, new one logs in
		oldLogin := postJSON(t, router, "/api/v1/auth/", map[string]string{
			"email": "minh@atrium.dev", "password": "s3cret-password",
		}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, oldLogin.Code)

		newLogin := postJSON(t, router, "/api/v1/auth/", map[string]string{
			"email": "minh@atrium.dev", "password": "brand-new-password",
		}, nil)
		assert.Equal(t, http.StatusOK, newLogin.Code)
	})
}

// # Identity Endpoint

/*
TestHTTP_Me authenticates via the HttpOnly cookie alone (injector path) and
echoes the token claims.
*/
func TestHTTP_Me(t *testing.T) {
	router, users, _, _ := newAuthRouter(t)
	user := seedUser(t, users, "minh@atrium.dev", "s3cret-password")

	_, cookies := loginOverHTTP(t, router)

	t.Run("cookie_session", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		for _, cookie := range cookies {
			request.AddCookie(cookie)
		}
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
		data := decodeData(t, recorder)
		assert.Equal(t, user.ID, data["id"])
		assert.Equal(t, "minh@atrium.dev", data["email"])
		assert.Equal(t, "staff", data["role"])
	})

	t.Run("anonymous_rejected", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("unknown_role_forbidden", func(t *testing.T) {
		// A verified token whose role is outside the hierarchy fails the
		// viewer floor.
		token, _, err := testCodec(t).Mint(user.ID, "minh@atrium.dev", "ghost-role", time.Hour)
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		request.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}

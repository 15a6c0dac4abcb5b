// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/vhminh/atrium/internal/platform/constants"
)

// # Cookie Transport

// CookiePair writes and reads one token/expiry cookie couple.
//
// # Shape
//
// Every token travels as TWO cookies: an HttpOnly cookie holding the signed
// token (invisible to scripts), and a plain cookie holding the expiry as an
// RFC 3339 timestamp so the frontend can schedule a refresh without being
// able to touch the token itself. Both cookies share the same Expires so the
// browser drops them together.
type CookiePair struct {
	TokenName  string
	ExpireName string
}

/*
Set writes the token cookie and its companion expiry cookie.

Parameters:
  - writer: http.ResponseWriter
  - token: string (signed token value)
  - expiresAt: time.Time (token expiry; also the cookie lifetime)
*/
func (pair CookiePair) Set(writer http.ResponseWriter, token string, expiresAt time.Time) {

	// HttpOnly token cookie: scripts never see the signed value
	http.SetCookie(writer, &http.Cookie{
		Name:     pair.TokenName,
		Value:    token,
		Path:     constants.CookiePath,
		Expires:  expiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	// Readable expiry cookie: frontend uses it to schedule refreshes
	http.SetCookie(writer, &http.Cookie{
		Name:     pair.ExpireName,
		Value:    expiresAt.UTC().Format(time.RFC3339),
		Path:     constants.CookiePath,
		Expires:  expiresAt,
		Secure:   true,
		HttpOnly: false,
		SameSite: http.SameSiteStrictMode,
	})
}

/*
Clear overwrites both cookies with empty values expiring in the past.

Description: Expiring the cookies a full day in the past (instead of "now")
keeps the clear effective on clients whose clocks run behind the server.
Clearing is idempotent: clearing absent cookies is a no-op for the browser.

Parameters:
  - writer: http.ResponseWriter
*/
func (pair CookiePair) Clear(writer http.ResponseWriter) {
	expired := time.Now().Add(-CookieClearSkew)

	http.SetCookie(writer, &http.Cookie{
		Name:     pair.TokenName,
		Value:    "",
		Path:     constants.CookiePath,
		Expires:  expired,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(writer, &http.Cookie{
		Name:     pair.ExpireName,
		Value:    "",
		Path:     constants.CookiePath,
		Expires:  expired,
		Secure:   true,
		HttpOnly: false,
		SameSite: http.SameSiteStrictMode,
	})
}

/*
Read extracts the token and raw expiry values from the request cookies.

Description: The expiry is returned as the raw cookie string, NOT parsed;
distinguishing "absent" from "present but malformed" matters to the refresh
state machine, which maps the two cases to different failures.

Parameters:
  - request: *http.Request

Returns:
  - token: string (empty if the token cookie is missing)
  - rawExpiry: string (empty if the expiry cookie is missing)
  - ok: bool (true only when BOTH cookies are present and non-empty)
*/
func (pair CookiePair) Read(request *http.Request) (token string, rawExpiry string, ok bool) {

	tokenCookie, err := request.Cookie(pair.TokenName)
	if err != nil || tokenCookie.Value == "" {
		return "", "", false
	}

	expireCookie, err := request.Cookie(pair.ExpireName)
	if err != nil || expireCookie.Value == "" {
		return tokenCookie.Value, "", false
	}

	return tokenCookie.Value, expireCookie.Value, true
}

// CookieTransport bundles the access and refresh cookie pairs under their
// configured names. It is the single place that knows which cookie is which.
type CookieTransport struct {
	Access  CookiePair
	Refresh CookiePair
}

// NewCookieTransport constructs a [CookieTransport] from the deployed cookie names.
func NewCookieTransport(accessName, accessExpireName, refreshName, refreshExpireName string) *CookieTransport {
	return &CookieTransport{
		Access:  CookiePair{TokenName: accessName, ExpireName: accessExpireName},
		Refresh: CookiePair{TokenName: refreshName, ExpireName: refreshExpireName},
	}
}

// SetSession writes all four session cookies from freshly issued credentials.
func (transport *CookieTransport) SetSession(writer http.ResponseWriter, credentials *Credentials) {
	transport.Access.Set(writer, credentials.AccessToken, credentials.AccessExpiresAt)
	transport.Refresh.Set(writer, credentials.RefreshToken, credentials.RefreshExpiresAt)
}

// ClearSession clears all four session cookies.
func (transport *CookieTransport) ClearSession(writer http.ResponseWriter) {
	transport.Access.Clear(writer)
	transport.Refresh.Clear(writer)
}

// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

package middleware

import (
	"net/http"

	"github.com/vhminh/atrium/internal/platform/constants"
)

// CookieTokenInjector bridges cookie-based sessions with header-based auth.
//
// Browser clients carry the access token in an HttpOnly cookie and cannot set
// the Authorization header themselves. This middleware copies the cookie value
// into a 'Authorization: Bearer <token>' header so that [Authenticate] sees a
// single transport regardless of client type.
//
// # Flow
//  1. If the Authorization header is already present, do nothing (API clients win).
//  2. Otherwise read the access token cookie; if present and non-empty, inject
//     the Bearer header.
//
// # Parameters
//   - accessCookieName: the configured name of the HttpOnly access token cookie.
//
// # Returns
//   - An [http.Handler] middleware. Must be registered BEFORE [Authenticate].
func CookieTokenInjector(accessCookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Explicit header takes precedence ───────────────────────────
			if request.Header.Get(constants.HeaderAuthorization) != "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Promote the cookie to a Bearer header ──────────────────────
			cookie, err := request.Cookie(accessCookieName)
			if err == nil && cookie.Value != "" {
				request.Header.Set(constants.HeaderAuthorization, "Bearer "+cookie.Value)
			}

			next.ServeHTTP(writer, request)
		})
	}
}

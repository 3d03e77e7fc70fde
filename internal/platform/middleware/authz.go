// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/taibuivan/lexica/internal/platform/apperr"
	"github.com/taibuivan/lexica/internal/platform/constants"
	"github.com/taibuivan/lexica/internal/platform/ctxutil"
	"github.com/taibuivan/lexica/internal/platform/respond"
	"github.com/taibuivan/lexica/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate identifies the caller from a session token.
//
// # Flow
//  1. An 'Authorization: Bearer <token>' header wins. A malformed or invalid
//     bearer token is rejected with 401, since API clients expect it.
//  2. Otherwise the session cookie is read. An invalid or expired cookie is
//     cleared and the request proceeds as anonymous, so browsers land on the
//     login page instead of an error.
//  3. Verified [*sec.AuthClaims] are injected into the request context.
func Authenticate(verifier TokenVerifier, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			if authHeader := request.Header.Get(constants.HeaderAuthorization); authHeader != "" {
				scheme, token, ok := strings.Cut(authHeader, " ")
				if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
					respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
					return
				}

				claims, err := verifier.VerifyToken(token)
				if err != nil {
					respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
					return
				}

				next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthUser(request.Context(), claims)))
				return
			}

			cookie, err := request.Cookie(constants.AccessTokenCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(writer, request)
				return
			}

			claims, err := verifier.VerifyToken(cookie.Value)
			if err != nil {
				ClearSessionCookie(writer, secureCookies)
				next.ServeHTTP(writer, request)
				return
			}

			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthUser(request.Context(), claims)))
		})
	}
}

// RequireLogin redirects anonymous requests to the login page, carrying the
// original path in the "next" parameter.
//
// Must be registered in the router AFTER [Authenticate].
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			target := constants.LoginPath + "?next=" + url.QueryEscape(request.URL.RequestURI())
			http.Redirect(writer, request, target, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// # Session Cookie

// SetSessionCookie stores the session token in an HttpOnly cookie.
func SetSessionCookie(writer http.ResponseWriter, token string, secure bool) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(constants.AccessTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(writer http.ResponseWriter, secure bool) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

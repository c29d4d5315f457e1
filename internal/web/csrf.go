// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package web

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/samber/oops"
)

// Cookie names. The session cookie is HttpOnly; the CSRF cookies are
// readable so forms and API clients can echo the token back.
const (
	sessionCookieName   = "shelfmark_session"
	loginCSRFCookieName = "shelfmark_login_csrf"
	csrfCookieName      = "shelfmark_csrf"

	csrfFormField  = "_csrf"
	csrfHeaderName = "X-CSRF-Token"
)

// newCSRFToken returns a fresh random token in hex.
func newCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("CSRF_TOKEN_FAILED").Wrapf(err, "generating csrf token")
	}
	return hex.EncodeToString(buf), nil
}

// csrfTokensMatch compares tokens in constant time.
func csrfTokensMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// requestCSRFToken extracts the caller-supplied token: the X-CSRF-Token
// header wins, falling back to the _csrf form field.
func requestCSRFToken(r *http.Request) string {
	if token := r.Header.Get(csrfHeaderName); token != "" {
		return token
	}
	return r.PostFormValue(csrfFormField)
}

// issueLoginCSRF sets the pre-login double-submit cookie and returns the
// token for embedding in the login form.
func (a *App) issueLoginCSRF(w http.ResponseWriter) (string, error) {
	token, err := newCSRFToken()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     loginCSRFCookieName,
		Value:    token,
		Path:     "/login",
		Secure:   a.secureCookies,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// verifyLoginCSRF checks the double-submit pair on a login attempt.
func verifyLoginCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(loginCSRFCookieName)
	if err != nil {
		return false
	}
	return csrfTokensMatch(cookie.Value, requestCSRFToken(r))
}

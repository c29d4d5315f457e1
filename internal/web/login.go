// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/pkg/errutil"
)

// loginPage is the template data for the login form.
type loginPage struct {
	Error     bool
	LoggedOut bool
	CSRFToken string
}

// handleLoginForm renders the login page. The error and logout query
// parameters switch the one-line status banners on.
func (a *App) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	token, err := a.issueLoginCSRF(w)
	if err != nil {
		errutil.LogError(a.logger, "issuing login csrf token", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	a.render(w, http.StatusOK, "login.html", loginPage{
		Error:     r.URL.Query().Has("error"),
		LoggedOut: r.URL.Query().Has("logout"),
		CSRFToken: token,
	})
}

// handleLogin processes a credential submission. Success always lands on
// /home; any credential failure comes back as /login?error with no detail
// about which part was wrong.
func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !verifyLoginCSRF(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	identity, err := a.auth.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			a.recordLogin("invalid")
			http.Redirect(w, r, "/login?error", http.StatusFound)
			return
		}
		a.recordLogin("error")
		errutil.LogError(a.logger, "authentication failed", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	token, sess, err := a.sessions.Create(r.Context(), identity)
	if err != nil {
		a.recordLogin("error")
		errutil.LogError(a.logger, "creating session", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	a.setSessionCookies(w, token, sess.CSRFToken)
	a.recordLogin("success")
	a.logger.Info("user logged in", slog.String("username", identity.Username))

	http.Redirect(w, r, "/home", http.StatusFound)
}

// handleLogout invalidates the current session. The access gate has already
// verified the session and its CSRF token.
func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := a.sessions.Invalidate(r.Context(), cookie.Value); err != nil {
			errutil.LogError(a.logger, "invalidating session", err)
		}
	}
	if sess := sessionFrom(r.Context()); sess != nil {
		a.logger.Info("user logged out", slog.String("username", sess.Username))
	}

	a.clearSessionCookie(w)
	http.Redirect(w, r, "/login?logout", http.StatusFound)
}

// setSessionCookies installs the HttpOnly session cookie and the readable
// CSRF companion cookie.
func (a *App) setSessionCookies(w http.ResponseWriter, token, csrfToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Secure:   a.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    csrfToken,
		Path:     "/",
		Secure:   a.secureCookies,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *App) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   a.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *App) recordLogin(outcome string) {
	if a.metrics != nil {
		a.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package web

import "net/http"

// homePage is the template data for the home view.
type homePage struct {
	Username  string
	CSRFToken string
}

// handleRoot sends the landing path to the home view.
func (a *App) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/home", http.StatusFound)
}

// handleHome renders the post-login landing page.
func (a *App) handleHome(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if sess == nil {
		// Gate guarantees a session on this path; a nil one means the
		// middleware chain is miswired.
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	a.render(w, http.StatusOK, "home.html", homePage{
		Username:  sess.Username,
		CSRFToken: sess.CSRFToken,
	})
}

// errorPage is the template data for the error view.
type errorPage struct {
	Message string
}

// handleErrorPage renders the public error view.
func (a *App) handleErrorPage(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, "error.html", errorPage{
		Message: r.URL.Query().Get("message"),
	})
}

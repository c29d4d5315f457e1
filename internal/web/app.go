// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

// Package web serves the login flow, views, and the book catalog API.
package web

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/shelfmark/shelfmark/internal/access"
	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/books"
	"github.com/shelfmark/shelfmark/internal/observability"
)

// AppConfig carries the dependencies of the web application.
type AppConfig struct {
	Auth     *auth.Service
	Sessions *auth.SessionManager
	Gate     *access.Gate
	Books    *books.Service
	Metrics  *observability.Metrics // optional
	Logger   *slog.Logger
	BaseURL  string
}

// App is the HTTP application: routing, access control, and handlers.
type App struct {
	auth          *auth.Service
	sessions      *auth.SessionManager
	gate          *access.Gate
	books         *books.Service
	metrics       *observability.Metrics
	logger        *slog.Logger
	templates     *template.Template
	secureCookies bool
}

// NewApp creates the web application.
func NewApp(cfg AppConfig) (*App, error) {
	if cfg.Auth == nil || cfg.Sessions == nil || cfg.Gate == nil || cfg.Books == nil {
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("auth, sessions, gate, and books are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &App{
		auth:          cfg.Auth,
		sessions:      cfg.Sessions,
		gate:          cfg.Gate,
		books:         cfg.Books,
		metrics:       cfg.Metrics,
		logger:        logger,
		templates:     templates,
		secureCookies: strings.HasPrefix(cfg.BaseURL, "https://"),
	}, nil
}

// Router builds the full handler chain: request metrics, then the access
// gate, then the route mux.
func (a *App) Router() (http.Handler, error) {
	static, err := staticHandler()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", a.handleRoot)
	mux.HandleFunc("GET /home", a.handleHome)
	mux.HandleFunc("GET /error", a.handleErrorPage)
	mux.HandleFunc("GET /login", a.handleLoginForm)
	mux.HandleFunc("POST /login", a.handleLogin)
	mux.HandleFunc("POST /logout", a.handleLogout)

	mux.Handle("GET /css/", static)
	mux.Handle("GET /js/", static)

	mux.HandleFunc("GET /api/books", a.handleBookList)
	mux.HandleFunc("POST /api/books", a.handleBookCreate)
	mux.HandleFunc("GET /api/books/{id}", a.handleBookGet)
	mux.HandleFunc("PATCH /api/books/{id}", a.handleBookPatch)
	mux.HandleFunc("DELETE /api/books/{id}", a.handleBookDelete)

	return a.withMetrics(a.withAccessGate(mux)), nil
}

// withAccessGate enforces the path policy: public paths pass through,
// everything else needs a valid session or is redirected to the login page.
func (a *App) withAccessGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.gate.Decide(r.URL.Path) == access.Public {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := a.resolveSession(r)
		if err != nil {
			a.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		if isMutating(r.Method) && !csrfTokensMatch(sess.CSRFToken, requestCSRFToken(r)) {
			a.logger.Warn("csrf token mismatch",
				slog.String("path", r.URL.Path),
				slog.String("username", sess.Username))
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

// resolveSession validates the session cookie against the session manager.
func (a *App) resolveSession(r *http.Request) (*auth.Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, auth.ErrNotFound
	}
	return a.sessions.Resolve(r.Context(), cookie.Value)
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// withMetrics counts requests by method, route pattern, and status.
func (a *App) withMetrics(next http.Handler) http.Handler {
	if a.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.metrics.RequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

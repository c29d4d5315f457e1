// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package web

import (
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/samber/oops"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// parseTemplates loads the embedded page templates.
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, oops.Code("WEB_TEMPLATES_FAILED").Wrapf(err, "parsing templates")
	}
	return tmpl, nil
}

// staticHandler serves the embedded /css and /js assets.
func staticHandler() (http.Handler, error) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, oops.Code("WEB_STATIC_FAILED").Wrapf(err, "loading static assets")
	}
	return http.FileServer(http.FS(sub)), nil
}

// render writes an HTML page. Render failures after headers are sent can
// only be logged.
func (a *App) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := a.templates.ExecuteTemplate(w, name, data); err != nil {
		a.logger.Error("template render failed", slog.String("template", name), slog.Any("error", err))
	}
}

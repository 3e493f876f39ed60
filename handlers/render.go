// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/D35P4C1T0/crucibia/auth"
	"github.com/D35P4C1T0/crucibia/middleware"
	"github.com/D35P4C1T0/crucibia/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names
const (
	pageFormLogin  = "form_login.html"
	pageIndex      = "index.html"
	pageSuccess    = "success.html"
	pageAdminLogin = "admin_login.html"
	pageAdmin      = "admin.html"
	pageError      = "error.html"
)

var pageNames = []string{pageFormLogin, pageIndex, pageSuccess, pageAdminLogin, pageAdmin, pageError}

var templateFuncs = template.FuncMap{
	"ago": humanize.Time,
	"datetime": func(t time.Time) string {
		return t.Local().Format("02/01/2006 15:04")
	},
}

// PageData is the data every page template receives.
type PageData struct {
	Title     string
	CSRFToken string
	Flashes   []models.Flash
	IsGuest   bool
	IsAdmin   bool

	Form        models.SubmissionForm
	Errors      models.FieldErrors
	Submissions []models.Submission
	Message     string
}

// Pages renders the HTML templates.
type Pages struct {
	templates map[string]*template.Template
}

// NewPages parses the embedded templates. Each page is combined with the
// shared layout.
func NewPages() (*Pages, error) {
	p := &Pages{templates: make(map[string]*template.Template, len(pageNames))}

	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").
			Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		p.templates[name] = tmpl
	}

	return p, nil
}

// Render executes a page with the session's CSRF token and pending flashes
// and writes it with status.
func (p *Pages) Render(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	tmpl, ok := p.templates[name]
	if !ok {
		slog.Error("unknown template", "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if sess := auth.FromContext(r.Context()); sess != nil {
		token, err := sess.CSRFToken()
		if err != nil {
			slog.Error("failed to issue CSRF token", "error", err)
		}
		data.CSRFToken = token
		data.Flashes = append(sess.Flashes(), data.Flashes...)

		caps := sess.Capabilities()
		data.IsGuest = caps.Has(auth.ChannelGuest)
		data.IsAdmin = caps.Has(auth.ChannelAdmin)

		if err := sess.Save(r, w); err != nil {
			slog.Error("failed to save session", "error", err)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

var errorMessages = map[int][2]string{
	http.StatusBadRequest:          {"Richiesta non valida", "Errore di sicurezza. Riprova."},
	http.StatusForbidden:           {"Accesso negato", "Non hai i permessi per accedere a questa pagina."},
	http.StatusNotFound:            {"Pagina non trovata", "La pagina che cerchi non esiste."},
	http.StatusTooManyRequests:     {"Troppi tentativi", "Hai effettuato troppi tentativi. Riprova più tardi."},
	http.StatusInternalServerError: {"Errore del server", "Si è verificato un errore. Riprova più tardi."},
	http.StatusServiceUnavailable:  {"Servizio non disponibile", "Il servizio è momentaneamente non disponibile. Riprova più tardi."},
}

// Error renders the styled error page for status. It satisfies
// middleware.ErrorPage.
func (p *Pages) Error(w http.ResponseWriter, r *http.Request, status int) {
	msg, ok := errorMessages[status]
	if !ok {
		msg = [2]string{http.StatusText(status), "Si è verificato un errore."}
	}
	p.Render(w, r, status, pageError, PageData{Title: msg[0], Message: msg[1]})
}

// NotFound handles any unmatched route.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.Error(w, r, http.StatusNotFound)
}

// storageFailure logs the full error and shows the generic failure page.
func (p *Pages) storageFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.ErrorContext(r.Context(), "storage failure",
		"op", op,
		"error", err,
		"request_id", middleware.RequestIDFromContext(r.Context()),
	)
	p.Error(w, r, http.StatusInternalServerError)
}

// redirect saves the session and sends a 303 to target.
func redirect(w http.ResponseWriter, r *http.Request, sess *auth.Session, target string) {
	if err := sess.Save(r, w); err != nil {
		slog.Error("failed to save session", "error", err)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

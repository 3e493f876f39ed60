// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/D35P4C1T0/crucibia/auth"
	"github.com/D35P4C1T0/crucibia/middleware"
	"github.com/D35P4C1T0/crucibia/models"
	"github.com/D35P4C1T0/crucibia/validate"
)

// SubmissionStore is the persistence the handlers need.
type SubmissionStore interface {
	Insert(ctx context.Context, word, clue, name string) (int64, error)
	ListAll(ctx context.Context) ([]models.Submission, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	HasDuplicate(ctx context.Context, word, clue string) (bool, error)
	Ping(ctx context.Context) error
}

const (
	msgWrongGuestPassword = "Password errata. Chiedi la password agli organizzatori!"
	msgDuplicate          = "Questo contributo è già stato registrato"
	msgThanks             = "Grazie! Il tuo contributo è stato registrato."
	msgLoggedOut          = "Sei stato disconnesso"
)

type GuestHandler struct {
	store SubmissionStore
	gate  *auth.Gate
	pages *Pages
}

func NewGuestHandler(store SubmissionStore, gate *auth.Gate, pages *Pages) *GuestHandler {
	return &GuestHandler{store: store, gate: gate, pages: pages}
}

// Index handles GET /
func (h *GuestHandler) Index(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.pages)
	if sess == nil {
		return
	}

	if !sess.Capabilities().Has(auth.ChannelGuest) {
		h.pages.Render(w, r, http.StatusOK, pageFormLogin, PageData{Title: "Accesso"})
		return
	}

	h.pages.Render(w, r, http.StatusOK, pageIndex, PageData{Title: "Nuovo contributo"})
}

// Submit handles POST /. A body carrying access_password is a guest login;
// anything else is a word/clue submission.
func (h *GuestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.pages)
	if sess == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.pages.Error(w, r, http.StatusBadRequest)
		return
	}

	if _, ok := r.PostForm[models.FieldAccessPassword]; ok {
		h.login(w, r, sess)
		return
	}

	if !sess.Capabilities().Has(auth.ChannelGuest) {
		redirect(w, r, sess, "/")
		return
	}

	form := models.SubmissionForm{
		Word:     r.PostFormValue(models.FieldWord),
		Clue:     r.PostFormValue(models.FieldClue),
		Name:     r.PostFormValue(models.FieldName),
		Honeypot: r.PostFormValue(models.FieldHoneypot),
	}

	clean, fieldErrs := validate.Submission(form)

	// Spam is answered exactly like an accepted submission but never stored.
	if validate.IsSpam(form) {
		middleware.LogSecurityEvent(r, middleware.EventHoneypotTriggered)
		h.renderAccepted(w, r, clean.Name)
		return
	}

	if !fieldErrs.Empty() {
		h.pages.Render(w, r, http.StatusOK, pageIndex, PageData{
			Title:  "Nuovo contributo",
			Form:   clean,
			Errors: fieldErrs,
		})
		return
	}

	dup, err := h.store.HasDuplicate(r.Context(), clean.Word, clean.Clue)
	if err != nil {
		h.pages.storageFailure(w, r, "duplicate check", err)
		return
	}
	if dup {
		h.pages.Render(w, r, http.StatusOK, pageIndex, PageData{
			Title:   "Nuovo contributo",
			Form:    clean,
			Flashes: []models.Flash{{Kind: models.FlashError, Message: msgDuplicate}},
		})
		return
	}

	id, err := h.store.Insert(r.Context(), clean.Word, clean.Clue, clean.Name)
	if err != nil {
		h.pages.storageFailure(w, r, "insert", err)
		return
	}

	slog.Info("submission stored", "id", id, "remote", r.RemoteAddr)
	h.renderAccepted(w, r, clean.Name)
}

func (h *GuestHandler) renderAccepted(w http.ResponseWriter, r *http.Request, name string) {
	h.pages.Render(w, r, http.StatusOK, pageSuccess, PageData{
		Title:   "Contributo salvato",
		Form:    models.SubmissionForm{Name: name},
		Flashes: []models.Flash{{Kind: models.FlashSuccess, Message: msgThanks}},
	})
}

func (h *GuestHandler) login(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	if h.gate.Check(auth.ChannelGuest, r.PostFormValue(models.FieldAccessPassword)) {
		sess.Grant(auth.ChannelGuest)
		slog.Info("guest login", "remote", r.RemoteAddr)
		redirect(w, r, sess, "/")
		return
	}

	middleware.LogSecurityEvent(r, middleware.EventInvalidFormPassword, "channel", auth.ChannelGuest.String())
	h.pages.Render(w, r, http.StatusOK, pageFormLogin, PageData{
		Title:   "Accesso",
		Flashes: []models.Flash{{Kind: models.FlashError, Message: msgWrongGuestPassword}},
	})
}

// Logout handles GET /logout
func (h *GuestHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.pages)
	if sess == nil {
		return
	}

	sess.Revoke(auth.ChannelGuest)
	sess.AddFlash(models.FlashSuccess, msgLoggedOut)
	redirect(w, r, sess, "/")
}

// currentSession returns the session loaded by the middleware, rendering a
// 500 page when it is missing.
func currentSession(w http.ResponseWriter, r *http.Request, pages *Pages) *auth.Session {
	sess := auth.FromContext(r.Context())
	if sess == nil {
		slog.Error("no session in request context", "path", r.URL.Path)
		pages.Error(w, r, http.StatusInternalServerError)
	}
	return sess
}

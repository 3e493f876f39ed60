// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/D35P4C1T0/crucibia/auth"
	"github.com/D35P4C1T0/crucibia/middleware"
	"github.com/D35P4C1T0/crucibia/models"
)

const (
	msgWrongAdminPassword = "Password errata"
	msgDeleted            = "Contributo eliminato"
	msgAlreadyDeleted     = "Contributo non trovato: era già stato eliminato"

	csvTimeLayout = "2006-01-02 15:04:05"
)

var csvHeader = []string{"id", "parola", "frase_indizio", "nome", "timestamp"}

type AdminHandler struct {
	store SubmissionStore
	gate  *auth.Gate
	pages *Pages
}

func NewAdminHandler(store SubmissionStore, gate *auth.Gate, pages *Pages) *AdminHandler {
	return &AdminHandler{store: store, gate: gate, pages: pages}
}

// Dashboard handles GET /admin
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.pages)
	if sess == nil {
		return
	}

	if !sess.Capabilities().Has(auth.ChannelAdmin) {
		h.loginPrompt(w, r, http.StatusOK, nil)
		return
	}

	submissions, err := h.store.ListAll(r.Context())
	if err != nil {
		h.pages.storageFailure(w, r, "list", err)
		return
	}

	h.pages.Render(w, r, http.StatusOK, pageAdmin, PageData{
		Title:       "Pannello Amministratore",
		Submissions: submissions,
	})
}

// Login handles POST /admin
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.pages)
	if sess == nil {
		return
	}

	if h.gate.Check(auth.ChannelAdmin, r.PostFormValue(models.FieldAdminPassword)) {
		sess.Grant(auth.ChannelAdmin)
		slog.Info("admin login", "remote", r.RemoteAddr)
		redirect(w, r, sess, "/admin")
		return
	}

	middleware.LogSecurityEvent(r, middleware.EventInvalidAdminPassword, "channel", auth.ChannelAdmin.String())
	h.loginPrompt(w, r, http.StatusOK, []models.Flash{{Kind: models.FlashError, Message: msgWrongAdminPassword}})
}

// Export handles GET /admin/export
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.pages)
	if sess == nil {
		return
	}

	if !sess.Capabilities().Has(auth.ChannelAdmin) {
		h.loginPrompt(w, r, http.StatusForbidden, nil)
		return
	}

	submissions, err := h.store.ListAll(r.Context())
	if err != nil {
		h.pages.storageFailure(w, r, "export", err)
		return
	}

	// Buffer the whole file so a failure can still produce an error page.
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.UseCRLF = true

	if err := cw.Write(csvHeader); err != nil {
		h.pages.storageFailure(w, r, "export", err)
		return
	}
	for _, s := range submissions {
		record := []string{
			strconv.FormatInt(s.ID, 10),
			s.Word,
			s.Clue,
			s.Name,
			s.CreatedAt.UTC().Format(csvTimeLayout),
		}
		if err := cw.Write(record); err != nil {
			h.pages.storageFailure(w, r, "export", err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.pages.storageFailure(w, r, "export", err)
		return
	}

	slog.Info("csv export", "rows", len(submissions), "remote", r.RemoteAddr)

	hdr := w.Header()
	hdr.Set("Content-Type", "text/csv; charset=utf-8")
	hdr.Set("Content-Disposition", "attachment; filename=cruciverba.csv")
	hdr.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	hdr.Set("Pragma", "no-cache")
	hdr.Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// Delete handles POST /admin/delete/{id}
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.pages)
	if sess == nil {
		return
	}

	if !sess.Capabilities().Has(auth.ChannelAdmin) {
		h.loginPrompt(w, r, http.StatusForbidden, nil)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.pages.NotFound(w, r)
		return
	}
	if id <= 0 {
		h.pages.Error(w, r, http.StatusBadRequest)
		return
	}

	deleted, err := h.store.DeleteByID(r.Context(), id)
	if err != nil {
		h.pages.storageFailure(w, r, "delete", err)
		return
	}

	if deleted {
		slog.Info("submission deleted", "id", id, "remote", r.RemoteAddr)
		sess.AddFlash(models.FlashSuccess, msgDeleted)
	} else {
		sess.AddFlash(models.FlashInfo, msgAlreadyDeleted)
	}
	redirect(w, r, sess, "/admin")
}

// Logout handles GET /admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.pages)
	if sess == nil {
		return
	}

	sess.Revoke(auth.ChannelAdmin)
	redirect(w, r, sess, "/")
}

func (h *AdminHandler) loginPrompt(w http.ResponseWriter, r *http.Request, status int, flashes []models.Flash) {
	h.pages.Render(w, r, status, pageAdminLogin, PageData{
		Title:   "Accesso amministratore",
		Flashes: flashes,
	})
}

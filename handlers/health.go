// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/D35P4C1T0/crucibia/middleware"
	"github.com/D35P4C1T0/crucibia/models"
)

type HealthHandler struct {
	store SubmissionStore
}

func NewHealthHandler(store SubmissionStore) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.HealthResponse{Status: "ok"})
}

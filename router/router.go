// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"fmt"
	"net/http"

	"github.com/D35P4C1T0/crucibia/auth"
	"github.com/D35P4C1T0/crucibia/handlers"
	"github.com/D35P4C1T0/crucibia/middleware"
	"github.com/D35P4C1T0/crucibia/ratelimit"
)

// Per-route limits. Routes without their own limit get defaultLimits.
var (
	indexLimits   = []ratelimit.Rule{ratelimit.MustParseRule("30 per minute")}
	adminLimits   = []ratelimit.Rule{ratelimit.MustParseRule("20 per minute")}
	exportLimits  = []ratelimit.Rule{ratelimit.MustParseRule("10 per minute")}
	deleteLimits  = []ratelimit.Rule{ratelimit.MustParseRule("30 per minute")}
	defaultLimits = []ratelimit.Rule{
		ratelimit.MustParseRule("200 per day"),
		ratelimit.MustParseRule("50 per hour"),
	}
)

// Deps are the long-lived services the routes depend on.
type Deps struct {
	Store      handlers.SubmissionStore
	Gate       *auth.Gate
	Sessions   *auth.SessionManager
	Limiter    *ratelimit.Limiter
	TrustProxy bool
}

func NewRouter(deps Deps) (http.Handler, error) {
	pages, err := handlers.NewPages()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	mux := http.NewServeMux()

	// Initialize handlers
	guestHandler := handlers.NewGuestHandler(deps.Store, deps.Gate, pages)
	adminHandler := handlers.NewAdminHandler(deps.Store, deps.Gate, pages)
	healthHandler := handlers.NewHealthHandler(deps.Store)

	// route applies the scope's rate limit, then the CSRF check.
	route := func(scope string, rules []ratelimit.Rule, h http.HandlerFunc) http.Handler {
		return middleware.Chain(
			middleware.RateLimit(deps.Limiter, scope, pages.Error, rules...),
			middleware.CSRF(pages.Error),
		)(h)
	}

	// Health check
	mux.HandleFunc("GET /health", healthHandler.Check)

	// Guest channel
	mux.Handle("GET /{$}", route("index", indexLimits, guestHandler.Index))
	mux.Handle("POST /{$}", route("index", indexLimits, guestHandler.Submit))
	mux.Handle("GET /logout", route("logout", defaultLimits, guestHandler.Logout))

	// Admin channel
	mux.Handle("GET /admin", route("admin", adminLimits, adminHandler.Dashboard))
	mux.Handle("POST /admin", route("admin", adminLimits, adminHandler.Login))
	mux.Handle("GET /admin/export", route("export", exportLimits, adminHandler.Export))
	mux.Handle("POST /admin/delete/{id}", route("delete", deleteLimits, adminHandler.Delete))
	mux.Handle("GET /admin/logout", route("admin_logout", defaultLimits, adminHandler.Logout))

	// Anything else
	mux.Handle("/", route("not_found", defaultLimits, pages.NotFound))

	return middleware.Chain(
		middleware.Recovery(pages.Error),
		middleware.RealIP(deps.TrustProxy),
		middleware.WithLogging,
		middleware.SecurityHeaders,
		middleware.WithSession(deps.Sessions),
	)(mux), nil
}

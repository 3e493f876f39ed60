// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes of the crossword submission site.

# Route Registration

NewRouter wires the handlers and middleware around an http.ServeMux:

	h, err := router.NewRouter(router.Deps{
		Store:      submissions,
		Gate:       gate,
		Sessions:   sessions,
		Limiter:    limiter,
		TrustProxy: cfg.TrustProxy,
	})

# Endpoints

	GET  /                  - Guest password prompt or submission form (30/min)
	POST /                  - Guest login or submission (30/min)
	GET  /logout            - End the guest session
	GET  /admin             - Admin password prompt or submission list (20/min)
	POST /admin             - Admin login (20/min)
	GET  /admin/export      - CSV download (10/min)
	POST /admin/delete/{id} - Delete one submission (30/min)
	GET  /admin/logout      - End the admin session
	GET  /health            - Database ping

Routes without their own limit allow 50 requests per hour and 200 per day.
Every other path renders the not-found page.

# Middleware Order

Recovery, RealIP, WithLogging, SecurityHeaders and WithSession wrap the
whole mux. Each route then applies its rate limit followed by the CSRF
check, so a throttled client never reaches token validation.
*/
package router

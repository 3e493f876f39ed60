// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP handlers and HTML pages of the site.

# Handler Types

Each handler is a struct built from a SubmissionStore and, where a password
is involved, the shared *auth.Gate:

  - GuestHandler: guest login, word/clue submission, guest logout
  - AdminHandler: admin login, submission list, CSV export, delete
  - HealthHandler: database liveness probe

Handlers read the visitor's session from the request context; the
middleware package loads it before any handler runs.

# Guest Flow

	GET  /        → Index (password prompt or submission form)
	POST /        → Submit (access_password logs in, anything else submits)
	GET  /logout  → Logout

A submission is rejected silently when the hidden website field is filled,
re-rendered with field errors when validation fails, and stored otherwise.

# Admin Flow

	GET  /admin             → Dashboard (password prompt or list)
	POST /admin             → Login
	GET  /admin/export      → Export (RFC 4180 CSV download)
	POST /admin/delete/{id} → Delete
	GET  /admin/logout      → Logout

Export and Delete answer 403 without the admin channel.

# Pages

Templates are embedded and rendered through Pages, which injects the CSRF
token and pending flash messages into every page:

	pages, err := handlers.NewPages()
	pages.Render(w, r, http.StatusOK, "index.html", handlers.PageData{})

Storage failures are logged with the request id and shown as a generic
500 page.
*/
package handlers

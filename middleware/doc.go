// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Composition

Middleware share one type and compose with Chain; the first argument is
the outermost:

	h := middleware.Chain(
		middleware.Recovery(pages.Error),
		middleware.RealIP(cfg.TrustProxy),
		middleware.WithLogging,
		middleware.SecurityHeaders,
		middleware.WithSession(sessions),
	)(mux)

# Request Logging

WithLogging assigns a request id (uuid, echoed in X-Request-ID) and logs
method, path, status and duration_ms when the request completes.

# Security

SecurityHeaders sets CSP, HSTS, frame, sniffing and referrer headers on
every response. CSRF rejects POSTs whose csrf_token form field (or
X-CSRF-Token header) does not match the session. RateLimit applies
per-route limits and answers 429 with Retry-After.

Rejected requests are rendered through an ErrorPage callback and logged
with LogSecurityEvent:

	middleware.LogSecurityEvent(r, middleware.EventCSRFError, "reason", "missing")

# Client IP Extraction

Get the original client IP (X-Forwarded-For, X-Real-IP behind a trusted
proxy):

	ip := middleware.GetClientIP(r, trustProxy)
*/
package middleware

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/D35P4C1T0/crucibia/auth"
	"github.com/D35P4C1T0/crucibia/models"
	"github.com/D35P4C1T0/crucibia/ratelimit"
)

// Security event names
const (
	EventCSRFError            = "CSRF_ERROR"
	EventRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	EventInvalidFormPassword  = "INVALID_FORM_PASSWORD"
	EventInvalidAdminPassword = "INVALID_ADMIN_PASSWORD"
	EventHoneypotTriggered    = "HONEYPOT_TRIGGERED"
)

const contentSecurityPolicy = "default-src 'self'; " +
	"style-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net https://cdnjs.cloudflare.com https://fonts.googleapis.com; " +
	"font-src 'self' https://fonts.gstatic.com https://cdnjs.cloudflare.com; " +
	"script-src 'self' https://cdn.jsdelivr.net; " +
	"img-src 'self' data:; " +
	"connect-src 'self'"

// maxFormBytes bounds request bodies parsed for form values.
const maxFormBytes = 1 << 20

// LogSecurityEvent records a security-relevant event. Never pass secrets in args.
func LogSecurityEvent(r *http.Request, event string, args ...any) {
	attrs := append([]any{
		"event", event,
		"remote", r.RemoteAddr,
		"request_id", RequestIDFromContext(r.Context()),
	}, args...)
	slog.WarnContext(r.Context(), "security event", attrs...)
}

// Recovery recovers from panics, logs the stack and renders a 500 page.
func Recovery(onError ErrorPage) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					slog.ErrorContext(r.Context(), "panic recovered",
						"error", err,
						"stack", string(debug.Stack()),
						"method", r.Method,
						"path", r.URL.Path,
					)
					onError(w, r, http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders sets the browser hardening headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// WithSession loads the session once and stores it in the request context.
func WithSession(m *auth.SessionManager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := m.Load(r)
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		})
	}
}

// CSRF rejects state-changing requests whose token does not match the
// session's. It must run after WithSession.
func CSRF(onError ErrorPage) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				next.ServeHTTP(w, r)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
			token := r.PostFormValue(models.FieldCSRFToken)
			if token == "" {
				token = r.Header.Get("X-CSRF-Token")
			}

			err := auth.ErrCSRFMissing
			if sess := auth.FromContext(r.Context()); sess != nil {
				err = sess.VerifyCSRF(token)
			}
			if err != nil {
				reason := "invalid"
				switch {
				case errors.Is(err, auth.ErrCSRFMissing):
					reason = "missing"
				case errors.Is(err, auth.ErrCSRFExpired):
					reason = "expired"
				}
				LogSecurityEvent(r, EventCSRFError, "reason", reason, "path", r.URL.Path)
				onError(w, r, http.StatusBadRequest)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit enforces rules for one route scope. Limiter failures are
// logged and the request is let through.
func RateLimit(l *ratelimit.Limiter, scope string, onLimit ErrorPage, rules ...ratelimit.Rule) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := l.Allow(r.Context(), scope, GetClientIP(r, false), rules...)

			var limitErr *ratelimit.LimitError
			switch {
			case err == nil:
			case errors.As(err, &limitErr):
				secs := int(math.Ceil(limitErr.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				LogSecurityEvent(r, EventRateLimitExceeded, "scope", scope, "limit", limitErr.Rule.String())
				onLimit(w, r, http.StatusTooManyRequests)
				return
			default:
				slog.ErrorContext(r.Context(), "rate limiter unavailable, allowing request",
					"scope", scope,
					"error", err,
				)
			}

			next.ServeHTTP(w, r)
		})
	}
}

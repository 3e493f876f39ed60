// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/D35P4C1T0/crucibia/models"
	"github.com/D35P4C1T0/crucibia/testutil"
)

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureLogs routes the default logger into a buffer for the rest of the test.
func captureLogs(t *testing.T) *syncBuffer {
	t.Helper()

	out := &syncBuffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return out
}

// eventLines returns the log lines recording the given security event.
func eventLines(logs, event string) []string {
	var lines []string
	for _, line := range strings.Split(logs, "\n") {
		if strings.Contains(line, "event="+event) {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestSecurityEvents_FailedLogins(t *testing.T) {
	app := testutil.NewTestApp(t)
	logs := captureLogs(t)

	const guestAttempt = "tentativo-ospite-sbagliato"
	const adminAttempt = "tentativo-admin-sbagliato"

	b := testutil.NewBrowser(t, app.Handler)
	b.Submit("/", "/", url.Values{models.FieldAccessPassword: {guestAttempt}})
	b.Submit("/admin", "/admin", url.Values{models.FieldAdminPassword: {adminAttempt}})

	out := logs.String()

	guest := eventLines(out, "INVALID_FORM_PASSWORD")
	if len(guest) != 1 {
		t.Fatalf("Expected one INVALID_FORM_PASSWORD event, got %d:\n%s", len(guest), out)
	}
	if !strings.Contains(guest[0], "channel=guest") {
		t.Errorf("Guest event missing channel: %s", guest[0])
	}

	admin := eventLines(out, "INVALID_ADMIN_PASSWORD")
	if len(admin) != 1 {
		t.Fatalf("Expected one INVALID_ADMIN_PASSWORD event, got %d:\n%s", len(admin), out)
	}
	if !strings.Contains(admin[0], "channel=admin") {
		t.Errorf("Admin event missing channel: %s", admin[0])
	}

	for _, line := range append(guest, admin...) {
		if !strings.Contains(line, "time=") {
			t.Errorf("Event without timestamp: %s", line)
		}
		if !strings.Contains(line, "level=WARN") {
			t.Errorf("Event not logged at warn level: %s", line)
		}
		if !strings.Contains(line, "request_id=") {
			t.Errorf("Event without request id: %s", line)
		}
	}

	for _, attempt := range []string{guestAttempt, adminAttempt, "tentativo"} {
		if strings.Contains(out, attempt) {
			t.Errorf("Attempted password %q leaked into the log", attempt)
		}
	}
}

func TestSecurityEvents_SuccessfulLoginIsNotAnEvent(t *testing.T) {
	app := testutil.NewTestApp(t)
	logs := captureLogs(t)

	b := testutil.NewBrowser(t, app.Handler)
	b.LoginGuest(testutil.GuestPassword)
	b.LoginAdmin(testutil.AdminPassword)

	out := logs.String()
	if strings.Contains(out, "security event") {
		t.Errorf("Unexpected security event:\n%s", out)
	}
	if strings.Contains(out, testutil.GuestPassword) || strings.Contains(out, testutil.AdminPassword) {
		t.Error("Password leaked into the log")
	}
}

func TestSecurityEvents_CSRFRejection(t *testing.T) {
	app := testutil.NewTestApp(t)
	logs := captureLogs(t)

	b := testutil.NewBrowser(t, app.Handler)
	b.LoginGuest(testutil.GuestPassword)

	form := submission("CASA", "Il posto dove si abita", "")
	form.Set(models.FieldCSRFToken, "forged-token")
	w := b.PostForm("/", form)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	lines := eventLines(logs.String(), "CSRF_ERROR")
	if len(lines) != 1 {
		t.Fatalf("Expected one CSRF_ERROR event, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "reason=invalid") {
		t.Errorf("Expected reason=invalid: %s", lines[0])
	}
	if strings.Contains(lines[0], "forged-token") {
		t.Error("Submitted token leaked into the log")
	}
}

func TestSecurityEvents_Honeypot(t *testing.T) {
	app := testutil.NewTestApp(t)
	logs := captureLogs(t)

	b := testutil.NewBrowser(t, app.Handler)
	b.LoginGuest(testutil.GuestPassword)

	form := submission("SPAM", "Compra subito i nostri prodotti", "Bot")
	form.Set(models.FieldHoneypot, "http://example.com")
	b.Submit("/", "/", form)

	if lines := eventLines(logs.String(), "HONEYPOT_TRIGGERED"); len(lines) != 1 {
		t.Errorf("Expected one HONEYPOT_TRIGGERED event, got %d", len(lines))
	}
}

func TestSecurityEvents_RateLimit(t *testing.T) {
	app := testutil.NewTestApp(t)
	logs := captureLogs(t)

	b := testutil.NewBrowser(t, app.Handler)

	// Export allows 10 requests per minute; a window boundary may reset the
	// count once.
	limited := false
	for range 22 {
		if w := b.Get("/admin/export"); w.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatal("Expected the export limit to be reached")
	}

	lines := eventLines(logs.String(), "RATE_LIMIT_EXCEEDED")
	if len(lines) != 1 {
		t.Fatalf("Expected one RATE_LIMIT_EXCEEDED event, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "scope=export") {
		t.Errorf("Expected scope=export: %s", lines[0])
	}
}

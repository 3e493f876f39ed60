// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/D35P4C1T0/crucibia/auth"
	"github.com/D35P4C1T0/crucibia/cliparse"
	"github.com/D35P4C1T0/crucibia/db"
	"github.com/D35P4C1T0/crucibia/handlers"
	"github.com/D35P4C1T0/crucibia/models"
	"github.com/D35P4C1T0/crucibia/ratelimit"
	"github.com/D35P4C1T0/crucibia/router"
	"github.com/D35P4C1T0/crucibia/store"
)

// Test credentials
const (
	GuestPassword = "guest-test-pass"
	AdminPassword = "admin-test-pass"
)

// SetupTestDB creates a fresh SQLite database with the full schema in a
// temporary directory
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	conn, err := db.Open(ctx, db.SQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(ctx, conn, db.SQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                3318,
		DatabaseType:        cliparse.DatabaseSQLite,
		DatabasePath:        "test.db",
		SecretKey:           "test-secret-key",
		FormPassword:        GuestPassword,
		AdminPassword:       AdminPassword,
		RateLimitStorageURL: "memory://",
		SessionLifetime:     2 * time.Hour,
		CSRFTimeLimit:       time.Hour,
		StoreTimeout:        5 * time.Second,
		LogLevel:            "error",
		LogFormat:           "text",
	}
}

// App is a fully wired site over a temporary database.
type App struct {
	Handler http.Handler
	DB      *sql.DB
	Store   *store.Store
	Config  cliparse.Config
}

// NewTestApp builds the router with the test configuration.
func NewTestApp(t *testing.T) *App {
	t.Helper()
	return NewTestAppWithStore(t, nil)
}

// NewTestAppWithStore is NewTestApp with the handlers' store replaced, e.g.
// by a failing fake. A nil s uses the real store.
func NewTestAppWithStore(t *testing.T, s handlers.SubmissionStore) *App {
	t.Helper()

	cfg := GetTestConfig()
	conn := SetupTestDB(t)
	submissions := store.New(conn, db.SQLite, cfg.StoreTimeout)

	gate, err := auth.NewGate(cfg.FormPassword, cfg.AdminPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to create gate: %v", err)
	}

	limiter := ratelimit.New(ratelimit.NewMemoryStore(), cfg.SecretKey, 0)
	t.Cleanup(func() { limiter.Stop() })

	deps := router.Deps{
		Store: submissions,
		Gate:  gate,
		Sessions: auth.NewSessionManager(auth.SessionOptions{
			Secret:        cfg.SecretKey,
			Lifetime:      cfg.SessionLifetime,
			CSRFTimeLimit: cfg.CSRFTimeLimit,
		}),
		Limiter: limiter,
	}
	if s != nil {
		deps.Store = s
	}

	h, err := router.NewRouter(deps)
	if err != nil {
		t.Fatalf("Failed to build router: %v", err)
	}

	return &App{Handler: h, DB: conn, Store: submissions, Config: cfg}
}

// CountSubmissions returns the number of stored rows.
func CountSubmissions(t *testing.T, conn *sql.DB) int {
	t.Helper()

	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM submissions").Scan(&n); err != nil {
		t.Fatalf("Failed to count submissions: %v", err)
	}
	return n
}

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// ExtractCSRFToken returns the first CSRF token embedded in an HTML page.
func ExtractCSRFToken(body string) string {
	m := csrfPattern.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return m[1]
}

// Browser sends requests to a handler and keeps cookies between them.
type Browser struct {
	t          *testing.T
	handler    http.Handler
	cookies    map[string]*http.Cookie
	RemoteAddr string
}

func NewBrowser(t *testing.T, h http.Handler) *Browser {
	return &Browser{
		t:          t,
		handler:    h,
		cookies:    make(map[string]*http.Cookie),
		RemoteAddr: "192.0.2.10:50000",
	}
}

// Do sends req with the stored cookies and records any cookies set.
func (b *Browser) Do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()

	req.RemoteAddr = b.RemoteAddr
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *Browser) Get(path string) *httptest.ResponseRecorder {
	b.t.Helper()
	return b.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

// PostForm posts form values without adding a CSRF token.
func (b *Browser) PostForm(path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.Do(req)
}

// CSRFToken loads page and returns the token embedded in it.
func (b *Browser) CSRFToken(page string) string {
	b.t.Helper()

	w := b.Get(page)
	token := ExtractCSRFToken(w.Body.String())
	if token == "" {
		b.t.Fatalf("No CSRF token on %s (status %d)", page, w.Code)
	}
	return token
}

// Submit posts form values with a fresh CSRF token taken from tokenPage.
func (b *Browser) Submit(tokenPage, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()

	form.Set(models.FieldCSRFToken, b.CSRFToken(tokenPage))
	return b.PostForm(path, form)
}

// LoginGuest unlocks the guest channel and fails the test otherwise.
func (b *Browser) LoginGuest(password string) {
	b.t.Helper()

	w := b.Submit("/", "/", url.Values{models.FieldAccessPassword: {password}})
	if w.Code != http.StatusSeeOther {
		b.t.Fatalf("Guest login: expected 303, got %d", w.Code)
	}
}

// LoginAdmin unlocks the admin channel and fails the test otherwise.
func (b *Browser) LoginAdmin(password string) {
	b.t.Helper()

	w := b.Submit("/admin", "/admin", url.Values{models.FieldAdminPassword: {password}})
	if w.Code != http.StatusSeeOther {
		b.t.Fatalf("Admin login: expected 303, got %d", w.Code)
	}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/subtle"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/D35P4C1T0/crucibia/models"
)

// SessionName is the cookie carrying the session.
const SessionName = "cruciverba_session"

const (
	keyGuest      = "guest"
	keyAdmin      = "admin"
	keyCSRFToken  = "csrf_token"
	keyCSRFIssued = "csrf_issued"
	keyFlashes    = "flashes"
)

var (
	ErrCSRFMissing  = errors.New("the CSRF token is missing")
	ErrCSRFMismatch = errors.New("the CSRF tokens do not match")
	ErrCSRFExpired  = errors.New("the CSRF token has expired")
)

func init() {
	gob.Register(models.Flash{})
	gob.Register([]models.Flash{})
}

// Channel is an independently authenticated area of the site.
type Channel uint8

const (
	ChannelGuest Channel = 1 << iota
	ChannelAdmin
)

func (c Channel) String() string {
	switch c {
	case ChannelGuest:
		return "guest"
	case ChannelAdmin:
		return "admin"
	default:
		return fmt.Sprintf("channel(%d)", uint8(c))
	}
}

// Capabilities is the set of channels a request is authenticated for.
type Capabilities uint8

func (c Capabilities) Has(ch Channel) bool {
	return c&Capabilities(ch) != 0
}

// SessionOptions configures a SessionManager.
type SessionOptions struct {
	Secret        string
	Lifetime      time.Duration
	CSRFTimeLimit time.Duration
	Secure        bool
}

// SessionManager loads and saves signed, encrypted cookie sessions.
type SessionManager struct {
	store   *sessions.CookieStore
	csrfTTL time.Duration
	now     func() time.Time
}

// NewSessionManager builds a cookie store whose keys are derived from
// opts.Secret. An empty secret gets random keys, so sessions do not survive
// a restart.
func NewSessionManager(opts SessionOptions) *SessionManager {
	var hashKey, blockKey []byte
	if opts.Secret == "" {
		slog.Warn("SECRET_KEY not set, using a random key; sessions will not survive a restart")
		hashKey = securecookie.GenerateRandomKey(32)
		blockKey = securecookie.GenerateRandomKey(32)
	} else {
		hashKey = deriveKey(opts.Secret, "session-hash")
		blockKey = deriveKey(opts.Secret, "session-block")
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(opts.Lifetime / time.Second))

	return &SessionManager{
		store:   store,
		csrfTTL: opts.CSRFTimeLimit,
		now:     time.Now,
	}
}

// Load returns the request's session. A missing, tampered or expired cookie
// yields a fresh session with no capabilities.
func (m *SessionManager) Load(r *http.Request) *Session {
	raw, err := m.store.Get(r, SessionName)
	if err != nil {
		slog.Debug("discarding unreadable session", "error", err)
		raw = sessions.NewSession(m.store, SessionName)
		opts := *m.store.Options
		raw.Options = &opts
		raw.IsNew = true
	}
	return &Session{raw: raw, mgr: m}
}

// Session is the per-request view of the session cookie.
type Session struct {
	raw *sessions.Session
	mgr *SessionManager
}

func (s *Session) Capabilities() Capabilities {
	var caps Capabilities
	if v, _ := s.raw.Values[keyGuest].(bool); v {
		caps |= Capabilities(ChannelGuest)
	}
	if v, _ := s.raw.Values[keyAdmin].(bool); v {
		caps |= Capabilities(ChannelAdmin)
	}
	return caps
}

func (s *Session) Grant(ch Channel) {
	if key := channelKey(ch); key != "" {
		s.raw.Values[key] = true
	}
}

// Revoke removes one channel and leaves the other untouched.
func (s *Session) Revoke(ch Channel) {
	if key := channelKey(ch); key != "" {
		delete(s.raw.Values, key)
	}
}

func channelKey(ch Channel) string {
	switch ch {
	case ChannelGuest:
		return keyGuest
	case ChannelAdmin:
		return keyAdmin
	default:
		return ""
	}
}

// CSRFToken returns the session's CSRF token, minting a new one when none
// exists or the current one has expired.
func (s *Session) CSRFToken() (string, error) {
	token, _ := s.raw.Values[keyCSRFToken].(string)
	issued, _ := s.raw.Values[keyCSRFIssued].(int64)
	if token != "" && !s.expired(issued) {
		return token, nil
	}

	token, err := GenerateToken()
	if err != nil {
		return "", err
	}
	s.raw.Values[keyCSRFToken] = token
	s.raw.Values[keyCSRFIssued] = s.mgr.now().Unix()
	return token, nil
}

// VerifyCSRF compares a submitted token with the session's token.
func (s *Session) VerifyCSRF(submitted string) error {
	token, _ := s.raw.Values[keyCSRFToken].(string)
	if submitted == "" || token == "" {
		return ErrCSRFMissing
	}
	issued, _ := s.raw.Values[keyCSRFIssued].(int64)
	if s.expired(issued) {
		return ErrCSRFExpired
	}
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
		return ErrCSRFMismatch
	}
	return nil
}

func (s *Session) expired(issued int64) bool {
	if s.mgr.csrfTTL <= 0 {
		return false
	}
	return s.mgr.now().Sub(time.Unix(issued, 0)) > s.mgr.csrfTTL
}

func (s *Session) AddFlash(kind, message string) {
	pending, _ := s.raw.Values[keyFlashes].([]models.Flash)
	s.raw.Values[keyFlashes] = append(pending, models.Flash{Kind: kind, Message: message})
}

// Flashes returns and clears the pending flash messages. Save must be
// called afterwards for the removal to stick.
func (s *Session) Flashes() []models.Flash {
	pending, _ := s.raw.Values[keyFlashes].([]models.Flash)
	delete(s.raw.Values, keyFlashes)
	return pending
}

// Save writes the session cookie. It must run before the response body.
func (s *Session) Save(r *http.Request, w http.ResponseWriter) error {
	if err := s.raw.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

type sessionKey struct{}

// WithSession stores the session in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored by WithSession, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

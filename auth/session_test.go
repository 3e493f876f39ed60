// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/D35P4C1T0/crucibia/models"
)

func newTestManager() *SessionManager {
	return NewSessionManager(SessionOptions{
		Secret:        "test-secret",
		Lifetime:      2 * time.Hour,
		CSRFTimeLimit: time.Hour,
	})
}

// roundTrip saves s and returns a request carrying the resulting cookie.
func roundTrip(t *testing.T, s *Session) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	require.NoError(t, s.Save(req, w))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		next.AddCookie(c)
	}
	return next
}

func TestSession_GrantPersists(t *testing.T) {
	m := newTestManager()

	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Zero(t, s.Capabilities())

	s.Grant(ChannelGuest)
	loaded := m.Load(roundTrip(t, s))

	caps := loaded.Capabilities()
	assert.True(t, caps.Has(ChannelGuest))
	assert.False(t, caps.Has(ChannelAdmin))
}

func TestSession_ChannelsAreIndependent(t *testing.T) {
	m := newTestManager()

	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Grant(ChannelGuest)
	s.Grant(ChannelAdmin)
	s = m.Load(roundTrip(t, s))

	s.Revoke(ChannelAdmin)
	s = m.Load(roundTrip(t, s))
	assert.True(t, s.Capabilities().Has(ChannelGuest))
	assert.False(t, s.Capabilities().Has(ChannelAdmin))

	s.Grant(ChannelAdmin)
	s.Revoke(ChannelGuest)
	s = m.Load(roundTrip(t, s))
	assert.False(t, s.Capabilities().Has(ChannelGuest))
	assert.True(t, s.Capabilities().Has(ChannelAdmin))
}

func TestSession_CookieAttributes(t *testing.T) {
	m := NewSessionManager(SessionOptions{Secret: "k", Lifetime: time.Hour, Secure: true})
	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Grant(ChannelGuest)

	w := httptest.NewRecorder()
	require.NoError(t, s.Save(httptest.NewRequest(http.MethodGet, "/", nil), w))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 3600, c.MaxAge)
	assert.NotContains(t, c.Value, "guest")
}

func TestSession_TamperedCookieIsFresh(t *testing.T) {
	m := newTestManager()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionName, Value: "not-a-valid-cookie"})

	s := m.Load(req)
	assert.Zero(t, s.Capabilities())
}

func TestSession_OtherSecretIsRejected(t *testing.T) {
	s := newTestManager().Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Grant(ChannelAdmin)
	req := roundTrip(t, s)

	other := NewSessionManager(SessionOptions{Secret: "other-secret", Lifetime: time.Hour})
	assert.False(t, other.Load(req).Capabilities().Has(ChannelAdmin))
}

func TestSession_RandomKeyWhenSecretMissing(t *testing.T) {
	m := NewSessionManager(SessionOptions{Lifetime: time.Hour})
	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Grant(ChannelGuest)

	assert.True(t, m.Load(roundTrip(t, s)).Capabilities().Has(ChannelGuest))
}

func TestSession_CSRF(t *testing.T) {
	m := newTestManager()
	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))

	token, err := s.CSRFToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	again, err := s.CSRFToken()
	require.NoError(t, err)
	assert.Equal(t, token, again, "token should be stable within its lifetime")

	s = m.Load(roundTrip(t, s))
	assert.NoError(t, s.VerifyCSRF(token))
	assert.ErrorIs(t, s.VerifyCSRF(""), ErrCSRFMissing)
	assert.ErrorIs(t, s.VerifyCSRF(token+"x"), ErrCSRFMismatch)
	assert.ErrorIs(t, s.VerifyCSRF("completely-different"), ErrCSRFMismatch)
}

func TestSession_CSRFWithoutSessionToken(t *testing.T) {
	s := newTestManager().Load(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, s.VerifyCSRF("anything"), ErrCSRFMissing)
}

func TestSession_CSRFExpiry(t *testing.T) {
	m := newTestManager()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	token, err := s.CSRFToken()
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	assert.NoError(t, s.VerifyCSRF(token))

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, s.VerifyCSRF(token), ErrCSRFExpired)

	fresh, err := s.CSRFToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, fresh)
	assert.NoError(t, s.VerifyCSRF(fresh))
}

func TestSession_Flashes(t *testing.T) {
	m := newTestManager()
	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))

	s.AddFlash(models.FlashSuccess, "Contributo eliminato")
	s.AddFlash(models.FlashInfo, "Sei stato disconnesso")
	s = m.Load(roundTrip(t, s))

	flashes := s.Flashes()
	assert.Equal(t, []models.Flash{
		{Kind: models.FlashSuccess, Message: "Contributo eliminato"},
		{Kind: models.FlashInfo, Message: "Sei stato disconnesso"},
	}, flashes)

	s = m.Load(roundTrip(t, s))
	assert.Empty(t, s.Flashes())
}

func TestFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, FromContext(req.Context()))

	s := newTestManager().Load(req)
	ctx := WithSession(req.Context(), s)
	assert.Same(t, s, FromContext(ctx))
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGate_Check(t *testing.T) {
	g, err := NewGate("guest-pass", "admin-pass", bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name    string
		ch      Channel
		attempt string
		want    bool
	}{
		{"guest ok", ChannelGuest, "guest-pass", true},
		{"admin ok", ChannelAdmin, "admin-pass", true},
		{"guest wrong", ChannelGuest, "wrong", false},
		{"admin wrong", ChannelAdmin, "wrong", false},
		{"guest password on admin", ChannelAdmin, "guest-pass", false},
		{"admin password on guest", ChannelGuest, "admin-pass", false},
		{"empty", ChannelGuest, "", false},
		{"case matters", ChannelGuest, "GUEST-PASS", false},
		{"too long", ChannelGuest, strings.Repeat("a", 100), false},
		{"unknown channel", Channel(0), "guest-pass", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Check(tt.ch, tt.attempt))
		})
	}
}

func TestGate_AcceptsPrehashedPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	g, err := NewGate(string(hash), "admin-pass", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, g.Check(ChannelGuest, "s3cret"))
	assert.False(t, g.Check(ChannelGuest, string(hash)))
}

func TestNewGate_Errors(t *testing.T) {
	_, err := NewGate("", "admin", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = NewGate("guest", "", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = NewGate(strings.Repeat("x", 80), "admin", bcrypt.MinCost)
	assert.Error(t, err)
}

func TestCapabilities(t *testing.T) {
	var caps Capabilities
	assert.False(t, caps.Has(ChannelGuest))
	assert.False(t, caps.Has(ChannelAdmin))

	caps |= Capabilities(ChannelAdmin)
	assert.False(t, caps.Has(ChannelGuest))
	assert.True(t, caps.Has(ChannelAdmin))

	assert.Equal(t, "guest", ChannelGuest.String())
	assert.Equal(t, "admin", ChannelAdmin.String())
}

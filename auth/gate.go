// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt takes into account.
const maxPasswordBytes = 72

var ErrEmptyPassword = errors.New("password must not be empty")

// Gate checks login attempts for the guest and admin channels. Each channel
// has its own credential.
type Gate struct {
	hashes map[Channel][]byte
}

// NewGate hashes the configured passwords with the given bcrypt cost. A
// value that already is a bcrypt hash is used as is.
func NewGate(guestPassword, adminPassword string, cost int) (*Gate, error) {
	g := &Gate{hashes: make(map[Channel][]byte, 2)}

	for ch, password := range map[Channel]string{
		ChannelGuest: guestPassword,
		ChannelAdmin: adminPassword,
	} {
		hash, err := hashPassword(password, cost)
		if err != nil {
			return nil, fmt.Errorf("%s password: %w", ch, err)
		}
		g.hashes[ch] = hash
	}

	return g, nil
}

func hashPassword(password string, cost int) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	if _, err := bcrypt.Cost([]byte(password)); err == nil {
		return []byte(password), nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// Check reports whether attempt matches the password of the channel.
func (g *Gate) Check(ch Channel, attempt string) bool {
	hash, ok := g.hashes[ch]
	if !ok || attempt == "" || len(attempt) > maxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(attempt)) == nil
}

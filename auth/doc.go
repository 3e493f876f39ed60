// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the password gate, cookie sessions and token helpers.

# Channels

The site has two independently authenticated channels:

	auth.ChannelGuest  may submit word/clue pairs
	auth.ChannelAdmin  may list, export and delete submissions

A session holds either, both or neither. Logging out of one channel leaves
the other untouched.

# Password Gate

Each channel has its own password, stored as a bcrypt hash:

	gate, err := auth.NewGate(cfg.FormPassword, cfg.AdminPassword, bcrypt.DefaultCost)
	ok := gate.Check(auth.ChannelAdmin, attempt)

# Sessions

Sessions live in a signed and encrypted cookie (gorilla/sessions). Keys are
derived from SECRET_KEY; without one a random key is used and a warning is
logged. The middleware loads the session once per request:

	sess := auth.FromContext(r.Context())
	if !sess.Capabilities().Has(auth.ChannelGuest) { ... }
	sess.Grant(auth.ChannelGuest)
	err := sess.Save(r, w)

# CSRF Tokens

Each session carries one random token (24 bytes, URL-safe base64) that
expires after CSRF_TIME_LIMIT. Forms embed it and POSTs are checked with
VerifyCSRF, which returns ErrCSRFMissing, ErrCSRFMismatch or ErrCSRFExpired.

# IP Hashing

Rate-limit buckets are keyed by a salted hash so raw addresses are never
persisted:

	hash := auth.HashIP(ipAddress, salt)
*/
package auth

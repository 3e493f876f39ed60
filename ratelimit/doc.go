// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ratelimit implements fixed-window request limits per client.
//
// Rules are written the way they are configured ("30 per minute",
// "200/day"). Counters live in a Store chosen by URL: memory://,
// sqlite://<path> or postgres://... Clients are keyed by a salted hash of
// their address, so raw addresses never reach the store.
package ratelimit

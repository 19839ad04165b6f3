// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session implements the server-side session store. Sessions are
// keyed by an opaque random token handed to the client; only an HMAC of
// the token is persisted, so a leaked database does not yield usable
// session credentials.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// Session errors.
var (
	// ErrNoSession is returned by Get for tokens that are unknown or have
	// been invalidated. The two cases are indistinguishable.
	ErrNoSession = errors.New("no session")

	// ErrTokenCollision is returned when a freshly generated token already
	// exists in the store. The token space makes this statistically
	// impossible; observing it means the process is misconfigured (e.g. a
	// broken random source) and must not continue issuing sessions.
	ErrTokenCollision = errors.New("session token collision")
)

// Session is a single authenticated session.
type Session struct {
	ID        string // stable identifier, safe to log
	Token     string // opaque client capability; populated only by Create
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry horizon at the
// given instant. The horizon itself counts as expired.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions. Implementations must be safe for concurrent
// use; Get and Invalidate on the same token are linearizable.
type Store interface {
	// Create issues a new session for the user with a fresh random token.
	Create(ctx context.Context, userID int64) (Session, error)

	// Get resolves a token. Expired sessions are still returned; the
	// caller decides how staleness is handled. Unknown and invalidated
	// tokens both yield ErrNoSession.
	Get(ctx context.Context, token string) (Session, error)

	// Invalidate destroys the session for the token. Invalidating an
	// absent token is not an error.
	Invalidate(ctx context.Context, token string) error

	// Sweep removes all sessions that are expired at the given instant
	// and returns how many were removed.
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

const tokenBytes = 32

// newToken generates a cryptographically random session token.
func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

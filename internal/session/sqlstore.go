// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"accountd/internal/store"
)

// SQLStore is a Store backed by the relational database. The database is
// the single point of truth for session state, which gives Get and
// Invalidate their linearizability: once the row is gone, no reader
// anywhere observes the session as active.
type SQLStore struct {
	db       *sql.DB
	secret   []byte
	lifetime time.Duration
	nowFunc  func() time.Time
}

// NewSQLStore creates a session store. The secret keys the HMAC applied
// to tokens before they touch the database; lifetime is the expiry
// horizon for new sessions.
func NewSQLStore(db *sql.DB, secret []byte, lifetime time.Duration) *SQLStore {
	return &SQLStore{
		db:       db,
		secret:   secret,
		lifetime: lifetime,
		nowFunc:  time.Now,
	}
}

// Create implements Store.
func (s *SQLStore) Create(ctx context.Context, userID int64) (Session, error) {
	token, err := newToken()
	if err != nil {
		return Session{}, err
	}

	now := s.nowFunc().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.lifetime),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, token_hash, user_id, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sess.ID, s.hashToken(token), sess.UserID, sess.CreatedAt, sess.ExpiresAt)
	if err != nil {
		if store.IsUniqueViolation(err) {
			// Do not retry or overwrite: a collision in a 256-bit token
			// space means the random source is broken.
			return Session{}, fmt.Errorf("%w: %v", ErrTokenCollision, err)
		}
		return Session{}, fmt.Errorf("creating session: %w", err)
	}

	return sess, nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, token string) (Session, error) {
	sess := Session{Token: token}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at FROM sessions WHERE token_hash = ?`,
		s.hashToken(token)).
		Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNoSession
		}
		return Session{}, fmt.Errorf("reading session: %w", err)
	}
	return sess, nil
}

// Invalidate implements Store.
func (s *SQLStore) Invalidate(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE token_hash = ?`, s.hashToken(token)); err != nil {
		return fmt.Errorf("invalidating session: %w", err)
	}
	return nil
}

// Sweep implements Store.
func (s *SQLStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("sweeping sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweeping sessions: %w", err)
	}
	return n, nil
}

// hashToken derives the at-rest key for a token.
func (s *SQLStore) hashToken(token string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

var _ Store = (*SQLStore)(nil)

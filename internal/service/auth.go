// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service contains the application services that sit between the
// HTTP handlers and the stores.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"accountd/internal/auth"
	"accountd/internal/model"
	"accountd/internal/session"
	"accountd/internal/store"
)

// Authentication and authorization failures. These are terminal for the
// request; anything else bubbling out of the AuthService is an
// infrastructure failure and maps to a 500 without detail.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two are deliberately indistinguishable so login responses cannot
	// be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated means no session exists for the presented token.
	// Invalidated and never-issued tokens look the same.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrExpired means the session exists but is past its expiry horizon.
	ErrExpired = errors.New("session expired")

	// ErrForbidden means the session's user does not satisfy the
	// required role.
	ErrForbidden = errors.New("forbidden")
)

// Identity is the resolved subject of an authorized request.
type Identity struct {
	UserID int64
	Role   model.Role
}

// AuthService orchestrates login, request authorization and logout.
type AuthService struct {
	queries  *store.Queries
	sessions session.Store
	nowFunc  func() time.Time

	// dummyHash absorbs the password check for unknown emails so that
	// the unknown-email and wrong-password paths cost the same.
	dummyHash string
}

// NewAuthService creates an AuthService on top of the given stores.
func NewAuthService(queries *store.Queries, sessions session.Store) *AuthService {
	dummy, err := auth.HashPassword("accountd-dummy-password")
	if err != nil {
		// Only reachable if the system random source is broken.
		panic(fmt.Sprintf("hashing dummy password: %v", err))
	}
	return &AuthService{
		queries:   queries,
		sessions:  sessions,
		nowFunc:   time.Now,
		dummyHash: dummy,
	}
}

// Login verifies the credentials and, on success, issues a new session.
// Every call creates its own session; sessions of earlier logins stay
// untouched.
func (s *AuthService) Login(ctx context.Context, email, password string) (session.Session, model.User, error) {
	user, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_, _ = auth.CheckPassword(password, s.dummyHash)
			return session.Session{}, model.User{}, ErrInvalidCredentials
		}
		return session.Session{}, model.User{}, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		return session.Session{}, model.User{}, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return session.Session{}, model.User{}, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return session.Session{}, model.User{}, fmt.Errorf("issuing session: %w", err)
	}

	slog.Info("user logged in", "user_id", user.ID, "session_id", sess.ID)
	return sess, user, nil
}

// Authorize resolves a session token and checks the user's role against
// the minimum required one. Expired sessions are evicted on sight.
func (s *AuthService) Authorize(ctx context.Context, token string, minRole model.Role) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthenticated
	}

	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return Identity{}, ErrUnauthenticated
		}
		return Identity{}, fmt.Errorf("resolving session: %w", err)
	}

	if sess.Expired(s.nowFunc()) {
		_ = s.sessions.Invalidate(ctx, token)
		return Identity{}, ErrExpired
	}

	user, err := s.queries.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The user behind the session is gone; the session is dead.
			_ = s.sessions.Invalidate(ctx, token)
			return Identity{}, ErrUnauthenticated
		}
		return Identity{}, fmt.Errorf("loading session user: %w", err)
	}

	if !user.Role.AtLeast(minRole) {
		return Identity{}, ErrForbidden
	}

	return Identity{UserID: user.ID, Role: user.Role}, nil
}

// Logout invalidates the session unconditionally. Logging out an
// already-absent token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Invalidate(ctx, token); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}

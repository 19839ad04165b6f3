// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"accountd/internal/auth"
	"accountd/internal/model"
	"accountd/internal/pagination"
	"accountd/internal/store"
)

// usersCachePrefix covers every cache key derived from the users table.
const usersCachePrefix = "users:"

// minPasswordLength for newly created accounts.
const minPasswordLength = 8

// CreateUserRequest is the POST /users body.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// CreateUser handles POST /users (admin only).
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fields := map[string]string{}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = "must be a valid email address"
	}
	if len(req.Password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("must be at least %d characters", minPasswordLength)
	}

	role := model.RoleUser
	if req.Role != "" {
		parsed, err := model.ParseRole(req.Role)
		if err != nil {
			fields["role"] = "must be one of: user, admin"
		} else {
			role = parsed
		}
	}

	if len(fields) > 0 {
		WriteValidationError(w, fields)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		WriteInternalError(w)
		return
	}

	now := time.Now().UTC()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
		Name:         req.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			WriteConflict(w, "A user with this email already exists")
			return
		}
		slog.Error("failed to create user", "error", err)
		WriteInternalError(w)
		return
	}

	// Invalidate every cached listing before the response goes out, so
	// no later read can observe pre-write pages.
	h.invalidateUserCache(r.Context())

	slog.Info("user created", "user_id", user.ID, "role", user.Role)
	WriteCreated(w, user)
}

// ListUsers handles GET /users with page/per_page query parameters. The
// listing is served read-through from the cache.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	req := pagination.ParseRequest(r, h.cfg.DefaultPerPage, h.cfg.MaxPerPage)
	key := fmt.Sprintf("%slist:p%d:pp%d", usersCachePrefix, req.Page, req.PerPage)

	resp, err := h.listCache.GetOrSet(r.Context(), key, func() (*pagination.Response[model.User], error) {
		return h.fetchUserPage(r.Context(), req)
	})
	if err != nil {
		slog.Error("failed to list users", "error", err)
		WriteInternalError(w)
		return
	}

	WriteSuccess(w, resp.Items, &Meta{
		Total:   resp.TotalCount,
		Page:    resp.Page,
		PerPage: resp.PerPage,
		Pages:   resp.TotalPages,
	})
}

// GetUser handles GET /users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "User not found")
			return
		}
		slog.Error("failed to get user", "error", err, "user_id", id)
		WriteInternalError(w)
		return
	}

	WriteSuccess(w, user, nil)
}

// fetchUserPage reads one listing page straight from the store.
func (h *Handler) fetchUserPage(ctx context.Context, req pagination.Request) (*pagination.Response[model.User], error) {
	total, err := h.queries.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := pagination.Paginate(ctx, req, total, func(ctx context.Context, limit, offset int64) ([]model.User, error) {
		return h.queries.ListUsers(ctx, store.ListUsersParams{Limit: limit, Offset: offset})
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// invalidateUserCache drops all cached user listings. When the prefix
// scan fails against a reachable backend, the whole cache is cleared
// instead so no stale page can survive the write. The cache is advisory,
// so if both fail the write still succeeds; an unreachable backend also
// cannot serve stale pages once it recovers empty.
func (h *Handler) invalidateUserCache(ctx context.Context) {
	if err := h.listCache.DeleteByPrefix(ctx, usersCachePrefix); err != nil {
		slog.Warn("failed to invalidate user cache by prefix, clearing", "error", err)
		if err := h.listCache.Clear(ctx); err != nil {
			slog.Warn("failed to clear user cache", "error", err)
		}
	}
}

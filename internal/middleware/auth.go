// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization and request context handling.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"accountd/internal/model"
	"accountd/internal/service"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyIdentity is the context key for the authorized identity.
const ContextKeyIdentity ContextKey = "identity"

// APIError is the JSON error envelope written by the middleware. It
// matches the shape the api package uses for handler errors.
type APIError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	var apiErr APIError
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	_ = json.NewEncoder(w).Encode(apiErr)
}

// SessionToken extracts the session token from the request: the session
// cookie first, then an Authorization bearer header for non-browser
// clients. Returns "" when neither is present.
func SessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// RequireRole creates middleware that authorizes the request's session
// token against a minimum role. On success the resolved identity is
// attached to the request context; on failure the request is terminated
// with the mapped status before the handler runs.
func RequireRole(svc *service.AuthService, cookieName string, minRole model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r, cookieName)

			identity, err := svc.Authorize(r.Context(), token, minRole)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrUnauthenticated):
					WriteAPIError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
				case errors.Is(err, service.ErrExpired):
					WriteAPIError(w, http.StatusUnauthorized, "session_expired", "Session has expired")
				case errors.Is(err, service.ErrForbidden):
					WriteAPIError(w, http.StatusForbidden, "forbidden", "Insufficient permissions")
				default:
					slog.Error("authorization failed", "error", err, "path", r.URL.Path)
					WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Internal Server Error")
				}
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth creates middleware that requires any authenticated session.
func RequireAuth(svc *service.AuthService, cookieName string) func(http.Handler) http.Handler {
	return RequireRole(svc, cookieName, model.RoleUser)
}

// RequireAdmin creates middleware that requires an admin session.
func RequireAdmin(svc *service.AuthService, cookieName string) func(http.Handler) http.Handler {
	return RequireRole(svc, cookieName, model.RoleAdmin)
}

// GetIdentity retrieves the authorized identity from the request
// context. Returns nil on routes that did not pass through RequireRole.
func GetIdentity(r *http.Request) *service.Identity {
	identity, ok := r.Context().Value(ContextKeyIdentity).(service.Identity)
	if !ok {
		return nil
	}
	return &identity
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"accountd/internal/middleware"
	"accountd/internal/service"
)

// LoginRequest is the POST /auth/login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login. On success it issues a session and
// hands the token to the client as a cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		fields := map[string]string{}
		if req.Email == "" {
			fields["email"] = "required"
		}
		if req.Password == "" {
			fields["password"] = "required"
		}
		WriteValidationError(w, fields)
		return
	}

	if h.protect != nil {
		if !h.protect.AllowIP(clientIP(r)) {
			WriteError(w, http.StatusTooManyRequests, "too_many_requests", "Too many login attempts", nil)
			return
		}
		if locked, remaining := h.protect.IsLocked(req.Email); locked {
			slog.Warn("login attempt on locked account", "remote_addr", r.RemoteAddr)
			WriteError(w, http.StatusTooManyRequests, "account_locked",
				"Account temporarily locked, retry in "+remaining.Round(time.Second).String(), nil)
			return
		}
	}

	sess, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if h.protect != nil {
				h.protect.RecordFailure(req.Email)
			}
			WriteUnauthorized(w, "invalid_credentials", "Invalid email or password")
			return
		}
		slog.Error("login failed", "error", err)
		WriteInternalError(w)
		return
	}

	if h.protect != nil {
		h.protect.RecordSuccess(req.Email)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	WriteSuccess(w, user, nil)
}

// Logout handles POST /auth/logout. Invalidation is idempotent: a
// missing or already-invalidated token still clears the cookie and
// returns 204.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r, h.cfg.CookieName)

	if err := h.auth.Logout(r.Context(), token); err != nil {
		slog.Error("logout failed", "error", err)
		WriteInternalError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// clientIP returns the request's remote IP without the port. The RealIP
// middleware has already resolved proxy headers into RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

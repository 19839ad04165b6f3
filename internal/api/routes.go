// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"accountd/internal/middleware"
	"accountd/internal/service"
)

// requestTimeout bounds a single request end to end.
const requestTimeout = 30 * time.Second

// NewRouter builds the HTTP router with all routes and middleware.
func NewRouter(h *Handler, authSvc *service.AuthService) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(h.cfg.AllowedOrigins))
	r.Use(middleware.Timeout(requestTimeout))

	requireAuth := middleware.RequireAuth(authSvc, h.cfg.CookieName)
	requireAdmin := middleware.RequireAdmin(authSvc, h.cfg.CookieName)

	r.Get("/", h.Health)
	r.Get("/health/ready", h.Readiness)

	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)

	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", h.ListUsers)
			r.Get("/{id}", h.GetUser)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Post("/", h.CreateUser)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	return r
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Health handles GET /. It answers as long as the process is up and
// does not touch any backing store.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness handles GET /health/ready and reports whether the database
// is reachable.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		slog.Error("readiness check failed", "error", err)
		WriteError(w, http.StatusServiceUnavailable, "not_ready", "Database unavailable", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

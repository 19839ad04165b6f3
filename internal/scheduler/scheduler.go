// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"accountd/internal/session"
)

// sweepTimeout bounds a single sweep run.
const sweepTimeout = 30 * time.Second

// Scheduler handles scheduled maintenance like expired-session cleanup.
type Scheduler struct {
	sessions session.Store
	cron     *cron.Cron
	logger   *slog.Logger
}

// New creates a new scheduler instance.
func New(sessions session.Store, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sessions: sessions,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start begins the scheduler with a job to sweep expired sessions every minute.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		if err := s.sweepSessions(); err != nil {
			s.logger.Error("failed to sweep expired sessions", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// sweepSessions deletes sessions whose expiry has passed. Expired
// sessions are already rejected at authorization time, so the sweep
// only reclaims storage.
func (s *Scheduler) sweepSessions() error {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	removed, err := s.sessions.Sweep(ctx, time.Now().UTC())
	if err != nil {
		return err
	}

	if removed > 0 {
		s.logger.Info("swept expired sessions", "count", removed)
	}
	return nil
}

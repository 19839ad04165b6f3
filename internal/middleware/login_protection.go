// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// cleanupInterval is how often stale protection state is pruned.
const cleanupInterval = 10 * time.Minute

// maxIPLimiters caps the per-IP limiter map. Both maps are fed by
// attacker-chosen keys, so they must not grow without bound.
const maxIPLimiters = 10000

// LoginProtection provides combined per-IP rate limiting and per-account
// lockout for the login endpoint.
type LoginProtection struct {
	mu         sync.Mutex
	ipLimiters map[string]*rate.Limiter
	attempts   map[string]*loginAttempt

	ipRate      rate.Limit
	ipBurst     int
	maxFailures int
	lockout     time.Duration
	window      time.Duration
}

// loginAttempt tracks failed login attempts for an account.
type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is login attempts per second per IP.
	IPRateLimit float64
	// IPBurst is the maximum burst size for IP rate limiting.
	IPBurst int
	// MaxFailedAttempts before account lockout.
	MaxFailedAttempts int
	// LockoutDuration is how long a locked account stays locked.
	LockoutDuration time.Duration
	// AttemptWindow is the time window for counting failed attempts.
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       1,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a login protection instance.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	lp := &LoginProtection{
		ipLimiters:  make(map[string]*rate.Limiter),
		attempts:    make(map[string]*loginAttempt),
		ipRate:      rate.Limit(cfg.IPRateLimit),
		ipBurst:     cfg.IPBurst,
		maxFailures: cfg.MaxFailedAttempts,
		lockout:     cfg.LockoutDuration,
		window:      cfg.AttemptWindow,
	}

	go lp.cleanup()

	return lp
}

// cleanup periodically removes stale entries.
func (lp *LoginProtection) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		lp.cleanupStaleEntries()
	}
}

// cleanupStaleEntries drops attempt records whose lockout and window
// have both passed, and resets the IP limiter map once it grows past
// its cap.
func (lp *LoginProtection) cleanupStaleEntries() {
	now := time.Now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	for email, attempt := range lp.attempts {
		if now.After(attempt.lockedUntil) && now.Sub(attempt.firstFailed) > lp.window {
			delete(lp.attempts, email)
		}
	}

	if len(lp.ipLimiters) > maxIPLimiters {
		lp.ipLimiters = make(map[string]*rate.Limiter)
		slog.Info("cleared IP rate limiters due to size")
	}
}

// AllowIP reports whether the IP may attempt a login right now.
func (lp *LoginProtection) AllowIP(ip string) bool {
	lp.mu.Lock()
	limiter, ok := lp.ipLimiters[ip]
	if !ok {
		limiter = rate.NewLimiter(lp.ipRate, lp.ipBurst)
		lp.ipLimiters[ip] = limiter
	}
	lp.mu.Unlock()

	return limiter.Allow()
}

// IsLocked reports whether the account is locked out, and for how much
// longer.
func (lp *LoginProtection) IsLocked(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	attempt, ok := lp.attempts[email]
	if !ok {
		return false, 0
	}
	remaining := time.Until(attempt.lockedUntil)
	if remaining <= 0 {
		return false, 0
	}
	return true, remaining
}

// RecordFailure notes a failed login for the account and locks it once
// the failure budget inside the window is used up.
func (lp *LoginProtection) RecordFailure(email string) {
	now := time.Now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	attempt, ok := lp.attempts[email]
	if !ok || now.Sub(attempt.firstFailed) > lp.window {
		attempt = &loginAttempt{firstFailed: now}
		lp.attempts[email] = attempt
	}

	attempt.count++
	if attempt.count >= lp.maxFailures {
		attempt.lockedUntil = now.Add(lp.lockout)
	}
}

// RecordSuccess clears the failure state for the account.
func (lp *LoginProtection) RecordSuccess(email string) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	delete(lp.attempts, email)
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"fmt"
	"testing"
	"time"
)

func TestLoginProtection_IPRateLimit(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit: 1,
		IPBurst:     3,
	})

	for i := 0; i < 3; i++ {
		if !lp.AllowIP("10.0.0.1") {
			t.Fatalf("attempt %d within burst was denied", i+1)
		}
	}
	if lp.AllowIP("10.0.0.1") {
		t.Error("attempt past the burst was allowed")
	}

	// Separate IPs have separate budgets.
	if !lp.AllowIP("10.0.0.2") {
		t.Error("fresh IP was denied")
	}
}

func TestLoginProtection_AccountLockout(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
	})

	if locked, _ := lp.IsLocked("alice@example.com"); locked {
		t.Fatal("fresh account reported locked")
	}

	lp.RecordFailure("alice@example.com")
	lp.RecordFailure("alice@example.com")
	if locked, _ := lp.IsLocked("alice@example.com"); locked {
		t.Fatal("account locked before reaching the failure budget")
	}

	lp.RecordFailure("alice@example.com")
	locked, remaining := lp.IsLocked("alice@example.com")
	if !locked {
		t.Fatal("account not locked after exhausting the failure budget")
	}
	if remaining <= 0 || remaining > time.Minute {
		t.Errorf("remaining = %v, want within (0, 1m]", remaining)
	}

	// Other accounts are unaffected.
	if locked, _ := lp.IsLocked("bob@example.com"); locked {
		t.Error("unrelated account reported locked")
	}
}

func TestLoginProtection_SuccessClearsFailures(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 2,
		LockoutDuration:   time.Minute,
	})

	lp.RecordFailure("alice@example.com")
	lp.RecordSuccess("alice@example.com")
	lp.RecordFailure("alice@example.com")

	if locked, _ := lp.IsLocked("alice@example.com"); locked {
		t.Error("account locked although the counter was reset in between")
	}
}

func TestLoginProtection_CleanupReclaimsStaleEntries(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	lp.RecordFailure("stale@example.com")
	lp.RecordFailure("fresh@example.com")

	// Age the first record past both its window and any lockout.
	lp.mu.Lock()
	lp.attempts["stale@example.com"].firstFailed = time.Now().Add(-2 * time.Minute)
	lp.mu.Unlock()

	lp.cleanupStaleEntries()

	lp.mu.Lock()
	_, staleKept := lp.attempts["stale@example.com"]
	_, freshKept := lp.attempts["fresh@example.com"]
	lp.mu.Unlock()

	if staleKept {
		t.Error("stale attempt record survived cleanup")
	}
	if !freshKept {
		t.Error("fresh attempt record was pruned")
	}
}

func TestLoginProtection_CleanupKeepsLockedAccounts(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 1,
		LockoutDuration:   time.Hour,
		AttemptWindow:     time.Minute,
	})

	lp.RecordFailure("locked@example.com")

	// The window has passed but the lockout is still in force.
	lp.mu.Lock()
	lp.attempts["locked@example.com"].firstFailed = time.Now().Add(-2 * time.Minute)
	lp.mu.Unlock()

	lp.cleanupStaleEntries()

	if locked, _ := lp.IsLocked("locked@example.com"); !locked {
		t.Error("cleanup released an account whose lockout had not expired")
	}
}

func TestLoginProtection_CleanupCapsIPLimiters(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})

	for i := 0; i <= maxIPLimiters; i++ {
		lp.AllowIP(fmt.Sprintf("10.%d.%d.%d", i>>16&0xff, i>>8&0xff, i&0xff))
	}

	lp.cleanupStaleEntries()

	lp.mu.Lock()
	n := len(lp.ipLimiters)
	lp.mu.Unlock()
	if n != 0 {
		t.Errorf("ipLimiters has %d entries after cleanup, want 0", n)
	}
}

func TestLoginProtection_DefaultsApplied(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})
	def := DefaultLoginProtectionConfig()

	if lp.maxFailures != def.MaxFailedAttempts {
		t.Errorf("maxFailures = %d, want %d", lp.maxFailures, def.MaxFailedAttempts)
	}
	if lp.lockout != def.LockoutDuration {
		t.Errorf("lockout = %v, want %v", lp.lockout, def.LockoutDuration)
	}
	if lp.ipBurst != def.IPBurst {
		t.Errorf("ipBurst = %d, want %d", lp.ipBurst, def.IPBurst)
	}
}

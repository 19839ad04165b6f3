// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import "time"

// Options selects and configures a cache backend.
type Options struct {
	// RedisURL selects the Redis backend when non-empty.
	RedisURL string

	// Prefix is prepended to all keys (Redis backend only).
	Prefix string

	// DefaultTTL is the expiry applied when Set is called with ttl 0.
	DefaultTTL time.Duration

	// CleanupInterval is how often the memory backend drops expired
	// entries (memory backend only).
	CleanupInterval time.Duration
}

// DefaultOptions returns the default cache configuration.
func DefaultOptions() Options {
	return Options{
		Prefix:          "accountd:",
		DefaultTTL:      5 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

// New creates a cache backend from the options: Redis when a URL is
// configured, in-process memory otherwise.
func New(opts Options) (Cache, error) {
	if opts.DefaultTTL == 0 {
		opts.DefaultTTL = DefaultOptions().DefaultTTL
	}
	if opts.RedisURL != "" {
		return NewRedis(opts.RedisURL, opts.Prefix, opts.DefaultTTL)
	}
	if opts.CleanupInterval == 0 {
		opts.CleanupInterval = DefaultOptions().CleanupInterval
	}
	return NewMemory(opts.DefaultTTL, opts.CleanupInterval), nil
}

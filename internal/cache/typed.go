// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Typed wraps a Cache with JSON serialization for a single value type.
type Typed[T any] struct {
	cache      Cache
	defaultTTL time.Duration
}

// NewTyped creates a Typed cache over the given backend.
func NewTyped[T any](cache Cache, defaultTTL time.Duration) *Typed[T] {
	return &Typed[T]{cache: cache, defaultTTL: defaultTTL}
}

// Get retrieves a value. A miss, a backend error and a corrupt entry all
// report false; the cache is advisory and callers fall back to the store.
func (c *Typed[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false
	}
	return &value, true
}

// Set stores a value with the default TTL.
func (c *Typed[T]) Set(ctx context.Context, key string, value *T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, key, data, c.defaultTTL)
}

// Delete removes a key.
func (c *Typed[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, key)
}

// DeleteByPrefix removes every key with the prefix.
func (c *Typed[T]) DeleteByPrefix(ctx context.Context, prefix string) error {
	return c.cache.DeleteByPrefix(ctx, prefix)
}

// Clear removes all entries from the backend.
func (c *Typed[T]) Clear(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

// GetOrSet returns the cached value for key, or computes it with fn and
// caches the result. Cache failures on either side degrade to fn; only
// fn's own error can fail the call.
func (c *Typed[T]) GetOrSet(ctx context.Context, key string, fn func() (*T, error)) (*T, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}

	value, err := fn()
	if err != nil {
		return nil, err
	}

	_ = c.Set(ctx, key, value)
	return value, nil
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T) *Redis {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedis("redis://"+mr.Addr(), "test:", time.Minute)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedis_SetGet(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want %q", got, "value")
	}
}

func TestRedis_Miss(t *testing.T) {
	c := newTestRedis(t)

	if _, err := c.Get(context.Background(), "absent"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get(absent) error = %v, want ErrMiss", err)
	}
}

func TestRedis_Delete(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	_ = c.Set(ctx, "key", []byte("value"), 0)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "key"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get after Delete error = %v, want ErrMiss", err)
	}
}

func TestRedis_DeleteByPrefix(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	_ = c.Set(ctx, "users:list:p1:pp10", []byte("a"), 0)
	_ = c.Set(ctx, "users:list:p2:pp10", []byte("b"), 0)
	_ = c.Set(ctx, "other:key", []byte("c"), 0)

	if err := c.DeleteByPrefix(ctx, "users:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}

	if _, err := c.Get(ctx, "users:list:p1:pp10"); !errors.Is(err, ErrMiss) {
		t.Error("prefixed key survived DeleteByPrefix")
	}
	if _, err := c.Get(ctx, "other:key"); err != nil {
		t.Errorf("unrelated key was deleted: %v", err)
	}
}

func TestRedis_Clear(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrMiss) {
		t.Error("key survived Clear")
	}
}

func TestRedis_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedis("redis://"+mr.Addr(), "test:", time.Minute)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// miniredis advances TTLs manually.
	mr.FastForward(2 * time.Second)

	if _, err := c.Get(ctx, "key"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get after TTL error = %v, want ErrMiss", err)
	}
}

func TestNewRedis_BadURL(t *testing.T) {
	if _, err := NewRedis("not-a-url", "test:", time.Minute); err == nil {
		t.Fatal("NewRedis accepted a malformed URL")
	}
}

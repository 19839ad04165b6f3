// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestTyped_SetGet(t *testing.T) {
	backend := NewMemory(time.Minute, 0)
	defer func() { _ = backend.Close() }()
	c := NewTyped[testPayload](backend, 0)
	ctx := context.Background()

	want := &testPayload{Name: "users", Count: 3}
	if err := c.Set(ctx, "key", want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := c.Get(ctx, "key")
	if !ok {
		t.Fatal("Get reported a miss for a stored value")
	}
	if got.Name != want.Name || got.Count != want.Count {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
}

func TestTyped_Miss(t *testing.T) {
	backend := NewMemory(time.Minute, 0)
	defer func() { _ = backend.Close() }()
	c := NewTyped[testPayload](backend, 0)

	if _, ok := c.Get(context.Background(), "absent"); ok {
		t.Error("Get reported a hit for an absent key")
	}
}

func TestTyped_CorruptEntryIsAMiss(t *testing.T) {
	backend := NewMemory(time.Minute, 0)
	defer func() { _ = backend.Close() }()
	c := NewTyped[testPayload](backend, 0)
	ctx := context.Background()

	_ = backend.Set(ctx, "key", []byte("{not json"), 0)

	if _, ok := c.Get(ctx, "key"); ok {
		t.Error("Get reported a hit for a corrupt entry")
	}
}

func TestTyped_GetOrSet(t *testing.T) {
	backend := NewMemory(time.Minute, 0)
	defer func() { _ = backend.Close() }()
	c := NewTyped[testPayload](backend, 0)
	ctx := context.Background()

	calls := 0
	fn := func() (*testPayload, error) {
		calls++
		return &testPayload{Name: "computed", Count: calls}, nil
	}

	first, err := c.GetOrSet(ctx, "key", fn)
	if err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}
	if first.Count != 1 {
		t.Errorf("first.Count = %d, want 1", first.Count)
	}

	second, err := c.GetOrSet(ctx, "key", fn)
	if err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
	if second.Count != 1 {
		t.Errorf("second.Count = %d, want cached 1", second.Count)
	}
}

func TestTyped_GetOrSet_FnError(t *testing.T) {
	backend := NewMemory(time.Minute, 0)
	defer func() { _ = backend.Close() }()
	c := NewTyped[testPayload](backend, 0)

	wantErr := errors.New("store down")
	_, err := c.GetOrSet(context.Background(), "key", func() (*testPayload, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("GetOrSet error = %v, want %v", err, wantErr)
	}
}

func TestTyped_GetOrSet_DegradesWhenCacheClosed(t *testing.T) {
	backend := NewMemory(time.Minute, 0)
	_ = backend.Close()
	c := NewTyped[testPayload](backend, 0)

	// A dead backend must not fail the read path.
	got, err := c.GetOrSet(context.Background(), "key", func() (*testPayload, error) {
		return &testPayload{Name: "fresh"}, nil
	})
	if err != nil {
		t.Fatalf("GetOrSet with closed backend: %v", err)
	}
	if got.Name != "fresh" {
		t.Errorf("got.Name = %q, want %q", got.Name, "fresh")
	}
}

func TestTyped_DeleteByPrefix(t *testing.T) {
	backend := NewMemory(time.Minute, 0)
	defer func() { _ = backend.Close() }()
	c := NewTyped[testPayload](backend, 0)
	ctx := context.Background()

	_ = c.Set(ctx, "users:list:p1:pp10", &testPayload{Name: "p1"})
	_ = c.Set(ctx, "users:list:p2:pp10", &testPayload{Name: "p2"})

	if err := c.DeleteByPrefix(ctx, "users:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}
	if _, ok := c.Get(ctx, "users:list:p1:pp10"); ok {
		t.Error("prefixed key survived DeleteByPrefix")
	}
}

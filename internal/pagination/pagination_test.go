// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package pagination

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name        string
		page        int
		perPage     int
		wantPage    int
		wantPerPage int
	}{
		{"valid", 2, 20, 2, 20},
		{"zero page", 0, 20, 1, 20},
		{"negative page", -5, 20, 1, 20},
		{"zero per page", 3, 0, 3, 10},
		{"negative per page", 3, -1, 3, 10},
		{"per page above max falls back to default", 1, 500, 1, 10},
		{"per page at max", 1, 100, 1, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.page, tc.perPage, 10, 100)
			if got.Page != tc.wantPage || got.PerPage != tc.wantPerPage {
				t.Errorf("Normalize(%d, %d) = {%d, %d}, want {%d, %d}",
					tc.page, tc.perPage, got.Page, got.PerPage, tc.wantPage, tc.wantPerPage)
			}
		})
	}
}

func TestParseRequest(t *testing.T) {
	cases := []struct {
		name        string
		query       string
		wantPage    int
		wantPerPage int
	}{
		{"no params", "", 1, 10},
		{"both set", "page=3&per_page=25", 3, 25},
		{"malformed page", "page=abc&per_page=25", 1, 25},
		{"malformed per_page", "page=3&per_page=abc", 3, 10},
		{"oversized per_page", "per_page=9999", 1, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/users?"+tc.query, nil)
			got := ParseRequest(r, 10, 100)
			if got.Page != tc.wantPage || got.PerPage != tc.wantPerPage {
				t.Errorf("ParseRequest(%q) = {%d, %d}, want {%d, %d}",
					tc.query, got.Page, got.PerPage, tc.wantPage, tc.wantPerPage)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total   int64
		perPage int
		want    int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{100, 10, 10},
		{101, 10, 11},
		{5, 0, 1},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.perPage); got != tc.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tc.total, tc.perPage, got, tc.want)
		}
	}
}

func TestOffsetLimit(t *testing.T) {
	r := Request{Page: 3, PerPage: 20}
	if r.Offset() != 40 {
		t.Errorf("Offset() = %d, want 40", r.Offset())
	}
	if r.Limit() != 20 {
		t.Errorf("Limit() = %d, want 20", r.Limit())
	}
}

func TestPaginate_WalksFullSetWithoutGaps(t *testing.T) {
	data := make([]int, 23)
	for i := range data {
		data[i] = i
	}
	fetch := func(_ context.Context, limit, offset int64) ([]int, error) {
		end := offset + limit
		if end > int64(len(data)) {
			end = int64(len(data))
		}
		return data[offset:end], nil
	}

	seen := map[int]bool{}
	for page := 1; ; page++ {
		resp, err := Paginate(context.Background(), Request{Page: page, PerPage: 5}, int64(len(data)), fetch)
		if err != nil {
			t.Fatalf("Paginate(page=%d): %v", page, err)
		}
		if resp.TotalCount != int64(len(data)) {
			t.Errorf("TotalCount = %d, want %d", resp.TotalCount, len(data))
		}
		if resp.TotalPages != 5 {
			t.Errorf("TotalPages = %d, want 5", resp.TotalPages)
		}
		if len(resp.Items) == 0 {
			break
		}
		for _, v := range resp.Items {
			if seen[v] {
				t.Errorf("item %d appeared on more than one page", v)
			}
			seen[v] = true
		}
	}
	if len(seen) != len(data) {
		t.Errorf("walked %d items, want %d", len(seen), len(data))
	}
}

func TestPaginate_OverflowPageSkipsFetch(t *testing.T) {
	called := false
	fetch := func(_ context.Context, _, _ int64) ([]int, error) {
		called = true
		return nil, nil
	}

	resp, err := Paginate(context.Background(), Request{Page: 100, PerPage: 10}, 23, fetch)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if called {
		t.Error("fetch was called for a page past the end")
	}
	if resp.Items == nil {
		t.Error("Items is nil, want empty slice")
	}
	if len(resp.Items) != 0 {
		t.Errorf("len(Items) = %d, want 0", len(resp.Items))
	}
	if resp.TotalCount != 23 {
		t.Errorf("TotalCount = %d, want 23", resp.TotalCount)
	}
	if resp.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", resp.TotalPages)
	}
}

func TestPaginate_EmptySet(t *testing.T) {
	resp, err := Paginate(context.Background(), Request{Page: 1, PerPage: 10}, 0,
		func(_ context.Context, _, _ int64) ([]int, error) {
			t.Fatal("fetch called for empty set")
			return nil, nil
		})
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if len(resp.Items) != 0 || resp.Items == nil {
		t.Errorf("Items = %v, want empty non-nil slice", resp.Items)
	}
	if resp.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", resp.TotalPages)
	}
}

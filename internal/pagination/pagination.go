// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package pagination turns page/per-page requests into bounded,
// deterministic slice queries.
//
// Edge policy: missing or non-positive page and per_page values are
// corrected to the defaults rather than rejected, and a page beyond the
// last one yields an empty item list, not an error.
package pagination

import (
	"context"
	"net/http"
	"strconv"
)

// DefaultPerPage is the fallback page size when configuration does not
// provide one.
const DefaultPerPage = 10

// Request is a validated pagination request. Construct it with
// ParseRequest or Normalize; a zero Request is not meaningful.
type Request struct {
	Page    int
	PerPage int
}

// Offset returns the slice offset for the request.
func (r Request) Offset() int64 {
	return int64(r.Page-1) * int64(r.PerPage)
}

// Limit returns the slice limit for the request.
func (r Request) Limit() int64 {
	return int64(r.PerPage)
}

// Response is one page of results plus the bookkeeping a client needs to
// walk the full set.
type Response[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

// Normalize corrects out-of-range values: non-positive page becomes 1,
// non-positive per-page becomes defaultPerPage, and per-page above
// maxPerPage is clamped back to defaultPerPage.
func Normalize(page, perPage, defaultPerPage, maxPerPage int) Request {
	if defaultPerPage < 1 {
		defaultPerPage = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || (maxPerPage > 0 && perPage > maxPerPage) {
		perPage = defaultPerPage
	}
	return Request{Page: page, PerPage: perPage}
}

// ParseRequest reads page and per_page query parameters. Absent or
// malformed values fall back to the defaults.
func ParseRequest(r *http.Request, defaultPerPage, maxPerPage int) Request {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	return Normalize(page, perPage, defaultPerPage, maxPerPage)
}

// TotalPages returns ceil(totalCount/perPage), never less than 1.
func TotalPages(totalCount int64, perPage int) int {
	if perPage < 1 {
		return 1
	}
	pages := (totalCount + int64(perPage) - 1) / int64(perPage)
	if pages < 1 {
		pages = 1
	}
	return int(pages)
}

// Paginate fetches one page. The fetch function receives the limit and
// offset derived from the request; it is not called for pages past the
// end, which yield an empty item list with the total count unchanged.
func Paginate[T any](ctx context.Context, req Request, totalCount int64, fetch func(ctx context.Context, limit, offset int64) ([]T, error)) (Response[T], error) {
	resp := Response[T]{
		Items:      []T{},
		Page:       req.Page,
		PerPage:    req.PerPage,
		TotalCount: totalCount,
		TotalPages: TotalPages(totalCount, req.PerPage),
	}

	offset := req.Offset()
	if offset >= totalCount {
		return resp, nil
	}

	items, err := fetch(ctx, req.Limit(), offset)
	if err != nil {
		return Response[T]{}, err
	}
	if items != nil {
		resp.Items = items
	}
	return resp, nil
}

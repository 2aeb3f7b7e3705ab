// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// PAGINATION
// =============================================================================

// DefaultPageLimit is the number of messages fetched per page.
const DefaultPageLimit = 15

// Pagination tracks the cursor for incremental message loading.
//
// HasNext only flips to false once a fetch returns an empty page; a
// short but non-empty page keeps it true so the next scroll still
// probes the store.
type Pagination struct {
	Limit   int
	Offset  int
	HasNext bool
}

// NewPagination returns a cursor positioned at the start of a chat.
func NewPagination() *Pagination {
	return &Pagination{
		Limit:   DefaultPageLimit,
		HasNext: true,
	}
}

// Advance moves the cursor past a fetched page. Only an empty page
// marks the end of the history; a short page may still be followed by
// more rows.
func (p *Pagination) Advance(count int) {
	p.Offset += count
	p.HasNext = count != 0
}

// Reset rewinds the cursor to the start of the chat. Limit and HasNext
// are left untouched.
func (p *Pagination) Reset() {
	p.Offset = 0
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat messages and the cached model list in
// a local SQLite database.
//
// The database is the single source of truth for conversation history;
// the in-memory message list held by the chat engine is a write-through
// cache over it. Messages are fetched newest-first for pagination and
// reversed to chronological order before they are returned.
package storage

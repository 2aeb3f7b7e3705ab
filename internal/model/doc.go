// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chats and messages.
//
// A chat exists implicitly as the set of messages sharing a chat ID; no
// standalone chat record is created until the first message is stored.
// Messages have immutable identity except during edit/regenerate, where
// the record at a given position is replaced (old id removed, new id
// inserted at the same index), never mutated in place.
//
// The package also carries the static token price table used by the
// cost accountant. Pricing is keyed by model id; unknown models cost
// nothing.
package model

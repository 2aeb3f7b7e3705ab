// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat drives a single conversation: the view state machine,
// optimistic message insertion, edit and regenerate replacement,
// pagination of older messages, and the conversion of send failures
// into system notices with settings guidance links.
//
// All methods of a Conversation must be called from one goroutine;
// a conversation is a serialized control flow, not a shared object.
package chat

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// CHAT TYPE
// =============================================================================

// Chat is the lightweight record of a conversation: its identifier and
// the moment its first message was sent. A chat exists only by virtue
// of its messages; there is no separate chat table.
type Chat struct {
	ID      string    `json:"id"`
	StartAt time.Time `json:"sent_at"`
}

// =============================================================================
// PROVIDER IDENTIFIERS
// =============================================================================

// ProviderIdentifiers carries the server-side handles minted by a
// provider during a streaming exchange. Both are empty for providers
// that do not use the thread protocol.
type ProviderIdentifiers struct {
	AssistantID string
	ThreadID    string
}

// =============================================================================
// AGGREGATES
// =============================================================================

// ChatTokens sums the token counts across a slice of messages.
func ChatTokens(messages []*Message) int {
	total := 0
	for _, m := range messages {
		total += m.Tokens
	}
	return total
}

// ChatUsageCosts sums the recorded costs across a slice of messages.
// Messages without a recorded cost contribute nothing.
func ChatUsageCosts(messages []*Message) float64 {
	total := 0.0
	for _, m := range messages {
		total += m.CostValue()
	}
	return total
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathalimax/cortexia-app/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// Valid reports whether the role is one of the known senders.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// =============================================================================
// CONTEXT ACTIONS
// =============================================================================

// ContextAction identifies an operation offered on a rendered message.
type ContextAction string

const (
	ActionCopy       ContextAction = "copy"
	ActionEdit       ContextAction = "edit"
	ActionRegenerate ContextAction = "regenerate"
)

// ContextActions returns the actions available for a message from the
// given sender. Every message can be copied; only user messages can be
// edited and only assistant messages can be regenerated.
func ContextActions(r Role) []ContextAction {
	switch r {
	case RoleUser:
		return []ContextAction{ActionCopy, ActionEdit}
	case RoleAssistant:
		return []ContextAction{ActionCopy, ActionRegenerate}
	default:
		return []ContextAction{ActionCopy}
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a chat.
//
// Costs is a pointer so that "no cost computed" is distinguishable from
// a computed cost of zero: messages from unknown models carry a zero
// cost, while system notices carry none at all.
type Message struct {
	// Identity
	ID     string    `json:"id"`
	ChatID string    `json:"chat_id"`
	Sender Role      `json:"sender"`
	SentAt time.Time `json:"sent_at"`

	// Content
	Content string `json:"content"`

	// Accounting
	Tokens int      `json:"tokens,omitempty"`
	Costs  *float64 `json:"costs,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(chatID string, sender Role, content string) *Message {
	return &Message{
		ID:      uuid.NewString(),
		ChatID:  chatID,
		Sender:  sender,
		Content: content,
		SentAt:  time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(chatID, content string) *Message {
	return NewMessage(chatID, RoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(chatID, content string) *Message {
	return NewMessage(chatID, RoleAssistant, content)
}

// NewSystemMessage creates a new system message. System messages are
// rendered to the user but never sent to a provider.
func NewSystemMessage(chatID, content string) *Message {
	return NewMessage(chatID, RoleSystem, content)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// CostValue returns the computed cost, or zero when none was recorded.
func (m *Message) CostValue() float64 {
	if m.Costs == nil {
		return 0
	}
	return *m.Costs
}

// Preview returns a truncated preview of the message content, used
// by history listings.
func (m *Message) Preview(maxLen int) string {
	return util.Truncate(m.Content, maxLen)
}

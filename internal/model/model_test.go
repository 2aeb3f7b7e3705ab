// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"math"
	"testing"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRoleDisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{RoleSystem, "System"},
		{Role("weird"), "weird"},
	}

	for _, tt := range tests {
		if got := tt.role.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleUser.Valid() || !RoleAssistant.Valid() || !RoleSystem.Valid() {
		t.Error("known roles should be valid")
	}
	if Role("tool").Valid() {
		t.Error("unknown role should not be valid")
	}
}

func TestContextActions(t *testing.T) {
	tests := []struct {
		role Role
		want []ContextAction
	}{
		{RoleUser, []ContextAction{ActionCopy, ActionEdit}},
		{RoleAssistant, []ContextAction{ActionCopy, ActionRegenerate}},
		{RoleSystem, []ContextAction{ActionCopy}},
	}

	for _, tt := range tests {
		got := ContextActions(tt.role)
		if len(got) != len(tt.want) {
			t.Fatalf("ContextActions(%q) = %v, want %v", tt.role, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ContextActions(%q)[%d] = %q, want %q", tt.role, i, got[i], tt.want[i])
			}
		}
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage(t *testing.T) {
	msg := NewUserMessage("chat-1", "hello")

	if msg.ID == "" {
		t.Error("message should have a generated ID")
	}
	if msg.ChatID != "chat-1" {
		t.Errorf("ChatID = %q, want %q", msg.ChatID, "chat-1")
	}
	if msg.Sender != RoleUser {
		t.Errorf("Sender = %q, want %q", msg.Sender, RoleUser)
	}
	if msg.SentAt.IsZero() {
		t.Error("SentAt should be set")
	}

	other := NewUserMessage("chat-1", "hello")
	if other.ID == msg.ID {
		t.Error("generated IDs should be unique")
	}
}

func TestMessageIsEmpty(t *testing.T) {
	if !NewUserMessage("c", "").IsEmpty() {
		t.Error("empty content should be empty")
	}
	if NewUserMessage("c", "hi").IsEmpty() {
		t.Error("non-empty content should not be empty")
	}
}

func TestMessageCostValue(t *testing.T) {
	msg := NewSystemMessage("c", "notice")
	if msg.CostValue() != 0 {
		t.Errorf("nil Costs should read as 0, got %f", msg.CostValue())
	}

	cost := 0.25
	msg.Costs = &cost
	if msg.CostValue() != 0.25 {
		t.Errorf("CostValue() = %f, want 0.25", msg.CostValue())
	}
}

func TestMessagePreview(t *testing.T) {
	msg := NewUserMessage("c", "hello world")
	if got := msg.Preview(50); got != "hello world" {
		t.Errorf("short content should be unchanged, got %q", got)
	}
	if got := msg.Preview(8); got != "hello..." {
		t.Errorf("Preview(8) = %q, want %q", got, "hello...")
	}

	// Multi-byte characters must not be split.
	msg = NewUserMessage("c", "héllo wörld")
	if got := msg.Preview(8); got != "héllo..." {
		t.Errorf("Preview(8) = %q, want %q", got, "héllo...")
	}
}

// =============================================================================
// PAGINATION TESTS
// =============================================================================

func TestPaginationAdvance(t *testing.T) {
	p := NewPagination()

	if p.Limit != DefaultPageLimit {
		t.Errorf("Limit = %d, want %d", p.Limit, DefaultPageLimit)
	}
	if !p.HasNext {
		t.Error("fresh cursor should have a next page")
	}

	p.Advance(15)
	if p.Offset != 15 || !p.HasNext {
		t.Errorf("after full page: Offset=%d HasNext=%v, want 15 true", p.Offset, p.HasNext)
	}

	// A short page does NOT end the history. Only an empty one does.
	p.Advance(7)
	if p.Offset != 22 || !p.HasNext {
		t.Errorf("after short page: Offset=%d HasNext=%v, want 22 true", p.Offset, p.HasNext)
	}

	p.Advance(0)
	if p.Offset != 22 || p.HasNext {
		t.Errorf("after empty page: Offset=%d HasNext=%v, want 22 false", p.Offset, p.HasNext)
	}
}

func TestPaginationReset(t *testing.T) {
	p := NewPagination()
	p.Advance(15)
	p.Advance(0)

	p.Reset()
	if p.Offset != 0 {
		t.Errorf("Reset should zero the offset, got %d", p.Offset)
	}
	if p.HasNext {
		t.Error("Reset should not touch HasNext")
	}
	if p.Limit != DefaultPageLimit {
		t.Errorf("Reset should not touch Limit, got %d", p.Limit)
	}
}

// =============================================================================
// PRICING TESTS
// =============================================================================

func TestUsageCost(t *testing.T) {
	tests := []struct {
		name       string
		model      string
		sender     Role
		prompt     int
		completion int
		want       float64
	}{
		{"unknown model", "made-up-model", RoleUser, 1000, 1000, 0},
		{"user billed on prompt side", "gpt-4o", RoleUser, 1_000_000, 500, 2.5},
		{"assistant billed on completion side", "gpt-4o", RoleAssistant, 500, 1_000_000, 10.0},
		{"system never billed", "gpt-4o", RoleSystem, 1_000_000, 1_000_000, 0},
		{"gpt-4 output rate", "gpt-4", RoleAssistant, 0, 100_000, 6.0},
		{"mini input rate", "gpt-4o-mini", RoleUser, 2_000_000, 0, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UsageCost(tt.model, tt.sender, tt.prompt, tt.completion)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("UsageCost(%q, %q, %d, %d) = %f, want %f",
					tt.model, tt.sender, tt.prompt, tt.completion, got, tt.want)
			}
		})
	}
}

func TestPricingFor(t *testing.T) {
	p, ok := PricingFor("gpt-4o")
	if !ok {
		t.Fatal("gpt-4o should be in the price table")
	}
	if p.InputPerMillion != 2.5 || p.OutputPerMillion != 10.0 {
		t.Errorf("gpt-4o pricing = %+v, want {2.5 10}", p)
	}

	if _, ok := PricingFor("nope"); ok {
		t.Error("unknown model should not be found")
	}
}

// =============================================================================
// AGGREGATE TESTS
// =============================================================================

func TestChatAggregates(t *testing.T) {
	user := NewUserMessage("c", "question")
	user.Tokens = 20
	userCost := UsageCost("gpt-4o", RoleUser, 20, 0)
	user.Costs = &userCost

	assistant := NewAssistantMessage("c", "answer")
	assistant.Tokens = 5
	assistantCost := UsageCost("gpt-4o", RoleAssistant, 0, 5)
	assistant.Costs = &assistantCost

	messages := []*Message{user, assistant}

	if got := ChatTokens(messages); got != 25 {
		t.Errorf("ChatTokens = %d, want 25", got)
	}

	want := 20.0/1_000_000*2.5 + 5.0/1_000_000*10.0
	if got := ChatUsageCosts(messages); math.Abs(got-want) > 1e-12 {
		t.Errorf("ChatUsageCosts = %f, want %f", got, want)
	}

	// A system notice with nil cost contributes nothing.
	messages = append(messages, NewSystemMessage("c", "notice"))
	if got := ChatUsageCosts(messages); math.Abs(got-want) > 1e-12 {
		t.Errorf("ChatUsageCosts with notice = %f, want %f", got, want)
	}
}

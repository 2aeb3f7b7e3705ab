// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/jonathalimax/cortexia-app/internal/model"
	"github.com/jonathalimax/cortexia-app/internal/openai"
	"github.com/jonathalimax/cortexia-app/internal/provider"
)

// ErrMissingModelID indicates a send attempt without a selected model.
var ErrMissingModelID = errors.New("model id not selected")

// =============================================================================
// VIEW STATE
// =============================================================================

// StateKind enumerates the phases of a conversation view.
type StateKind int

const (
	StateNewChat StateKind = iota
	StateLoading
	StateReady
	StateFetchingMore
	StateEditing
)

// String returns the state name, for logs and test failures.
func (k StateKind) String() string {
	switch k {
	case StateNewChat:
		return "newChat"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFetchingMore:
		return "fetchingMore"
	case StateEditing:
		return "editing"
	default:
		return "unknown"
	}
}

// ViewState is the current phase of the conversation. While editing,
// TargetID names the message the in-flight replacement lands on.
type ViewState struct {
	Kind     StateKind
	TargetID string
}

// =============================================================================
// COLLABORATOR CONTRACTS
// =============================================================================

// Store is the message persistence contract the conversation runs on.
type Store interface {
	FetchMessages(ctx context.Context, chatID string, p *model.Pagination) ([]*model.Message, error)
	SaveMessage(ctx context.Context, chatID string, m *model.Message) error
	ReplaceMessage(ctx context.Context, currentID string, m *model.Message) error
	IsChatDeleted(ctx context.Context, chatID string) (bool, error)
}

// Orchestrator produces completions for a conversation turn.
type Orchestrator interface {
	Chat(ctx context.Context, api provider.API, modelID string, temperature float64, history []*model.Message) (*openai.MessageResponse, error)
	ChatStream(ctx context.Context, message, modelID string, identifiers *model.ProviderIdentifiers) (<-chan openai.StreamEvent, error)
}

// TurnConfig is the immutable per-turn configuration snapshot: the
// selected backend, model, and sampling temperature at the moment the
// user acted.
type TurnConfig struct {
	API         provider.API
	ModelID     string
	Temperature float64
}

// =============================================================================
// CONVERSATION
// =============================================================================

// Conversation is the state machine behind one open chat.
type Conversation struct {
	store        Store
	orchestrator Orchestrator
	secrets      provider.SecretStore
	linkScheme   string

	chatID      string
	messages    []*model.Message
	input       string
	viewState   ViewState
	pagination  *model.Pagination
	identifiers *model.ProviderIdentifiers

	editingMessageID      string
	regeneratingMessageID string
	focusedMessageID      string
}

// NewConversation creates an empty conversation in the newChat state.
// linkScheme is the deep-link scheme rendered into error guidance.
func NewConversation(store Store, orchestrator Orchestrator, secrets provider.SecretStore, linkScheme string) *Conversation {
	return &Conversation{
		store:        store,
		orchestrator: orchestrator,
		secrets:      secrets,
		linkScheme:   linkScheme,
		viewState:    ViewState{Kind: StateNewChat},
		pagination:   model.NewPagination(),
	}
}

// ChatID returns the current chat id, empty for a chat not yet
// persisted.
func (c *Conversation) ChatID() string { return c.chatID }

// State returns the current view state.
func (c *Conversation) State() ViewState { return c.viewState }

// Messages returns the loaded message window in chronological order.
// The returned slice is shared; callers must not mutate it.
func (c *Conversation) Messages() []*model.Message { return c.messages }

// Input returns the pending input text.
func (c *Conversation) Input() string { return c.input }

// SetInput replaces the pending input text.
func (c *Conversation) SetInput(text string) { c.input = text }

// FocusedMessageID returns the message the view should scroll to.
func (c *Conversation) FocusedMessageID() string { return c.focusedMessageID }

// EditingMessageID returns the id of the user message being edited,
// empty when no edit is in progress.
func (c *Conversation) EditingMessageID() string { return c.editingMessageID }

// RegeneratingMessageID returns the id of the assistant message being
// regenerated, empty when none is.
func (c *Conversation) RegeneratingMessageID() string { return c.regeneratingMessageID }

// HasNext reports whether older messages may remain in the store.
func (c *Conversation) HasNext() bool { return c.pagination.HasNext }

// TotalTokens sums the token counts of the loaded messages.
func (c *Conversation) TotalTokens() int { return model.ChatTokens(c.messages) }

// TotalCosts sums the computed costs of the loaded messages.
func (c *Conversation) TotalCosts() float64 { return model.ChatUsageCosts(c.messages) }

// =============================================================================
// OPENING AND PAGINATION
// =============================================================================

// Open loads the freshest page of an existing chat, or resets to a
// new chat when chatID is empty or the chat was deleted meanwhile.
func (c *Conversation) Open(ctx context.Context, chatID string) error {
	if chatID == "" {
		c.startNewChat()
		return nil
	}

	deleted, err := c.store.IsChatDeleted(ctx, chatID)
	if err != nil {
		return err
	}
	if deleted {
		c.startNewChat()
		return nil
	}

	// Drop whatever chat was loaded before; the window, the cursor,
	// the thread identifiers, and any in-flight edit all belong to it.
	c.startNewChat()
	c.chatID = chatID
	c.viewState = ViewState{Kind: StateLoading}
	return c.fetchPage(ctx, false)
}

// FetchMore loads the next page of older messages and prepends it.
// A no-op when the history is exhausted or a fetch is already in
// flight.
func (c *Conversation) FetchMore(ctx context.Context) error {
	if !c.pagination.HasNext {
		return nil
	}
	if c.viewState.Kind == StateLoading || c.viewState.Kind == StateFetchingMore {
		return nil
	}

	c.viewState = ViewState{Kind: StateFetchingMore}
	return c.fetchPage(ctx, true)
}

func (c *Conversation) fetchPage(ctx context.Context, more bool) error {
	msgs, err := c.store.FetchMessages(ctx, c.chatID, c.pagination)
	if err != nil {
		c.viewState = ViewState{Kind: StateReady}
		return err
	}
	c.messagesFetched(msgs, more)
	return nil
}

// messagesFetched merges a fetched page. The first page lands at the
// tail and focuses the last message; later pages carry older messages
// and are prepended without disturbing the loaded order.
func (c *Conversation) messagesFetched(msgs []*model.Message, more bool) {
	if more {
		c.messages = append(append([]*model.Message{}, msgs...), c.messages...)
	} else {
		c.messages = append(c.messages, msgs...)
		if len(msgs) > 0 {
			c.focusedMessageID = msgs[len(msgs)-1].ID
		}
	}

	c.viewState = ViewState{Kind: StateReady}
	c.pagination.Advance(len(msgs))
}

func (c *Conversation) startNewChat() {
	c.viewState = ViewState{Kind: StateNewChat}
	c.chatID = ""
	c.messages = nil
	c.input = ""
	c.identifiers = nil
	c.editingMessageID = ""
	c.regeneratingMessageID = ""
	c.focusedMessageID = ""
	c.pagination.Reset()
}

// =============================================================================
// SENDING
// =============================================================================

// Send submits the pending input as a user message and appends the
// backend's reply. When an edit is in progress the edited message (and
// its existing assistant reply, if any) is replaced instead. Failures
// never propagate: they are converted into a system notice appended
// to the conversation.
func (c *Conversation) Send(ctx context.Context, cfg TurnConfig) {
	if c.input == "" {
		return
	}

	chatID := c.chatID
	if chatID == "" {
		chatID = uuid.NewString()
	}

	// Editing reuses the edited message's id so the replacement lands
	// on the same row.
	editingID := c.editingMessageID
	input := c.input

	userMsg := model.NewUserMessage(chatID, input)
	if editingID != "" {
		userMsg.ID = editingID
	}

	c.sendingMessage(userMsg, chatID)
	if err := c.persistMessage(ctx, chatID, editingID, userMsg); err != nil {
		c.displayError(ctx, err, cfg, chatID, editingID)
		return
	}

	if err := c.completeTurn(ctx, cfg, chatID, editingID, userMsg, input); err != nil {
		c.displayError(ctx, err, cfg, chatID, editingID)
	}
}

// completeTurn resolves credentials and model, invokes the backend,
// and lands the reply. The credential and model checks run before any
// network call.
func (c *Conversation) completeTurn(ctx context.Context, cfg TurnConfig, chatID, editingID string, userMsg *model.Message, input string) error {
	key, err := c.secrets.Load(cfg.API.SecretKey())
	if err != nil || key == "" {
		return provider.ErrMissingSecretKey
	}
	if cfg.ModelID == "" {
		return ErrMissingModelID
	}

	if cfg.API == provider.APIOpenAI {
		return c.streamTurn(ctx, cfg, chatID, editingID, input)
	}
	return c.completionTurn(ctx, cfg, chatID, editingID, userMsg)
}

// completionTurn runs the one-shot protocol: the full persisted
// history (system notices excluded) goes out in a single request, the
// usage statistics price the user message, and the first choice lands
// as the assistant reply.
func (c *Conversation) completionTurn(ctx context.Context, cfg TurnConfig, chatID, editingID string, userMsg *model.Message) error {
	history, err := c.store.FetchMessages(ctx, chatID, nil)
	if err != nil {
		log.Printf("chat: history fetch failed, sending without context: %v", err)
		history = nil
	}

	resp, err := c.orchestrator.Chat(ctx, cfg.API, cfg.ModelID, cfg.Temperature, history)
	if err != nil {
		return err
	}

	cost := resp.Cost()
	userMsg.Costs = &cost
	c.sendingMessage(userMsg, chatID)
	if err := c.store.ReplaceMessage(ctx, userMsg.ID, userMsg); err != nil {
		return err
	}

	aiMsg, err := resp.AIMessage(chatID)
	if err != nil {
		return err
	}
	return c.persistMessage(ctx, chatID, editingID, aiMsg)
}

// streamTurn runs the thread/run protocol and lands the last streamed
// message as the assistant reply. Thread identifiers are kept for the
// rest of the conversation.
func (c *Conversation) streamTurn(ctx context.Context, cfg TurnConfig, chatID, editingID, input string) error {
	events, err := c.orchestrator.ChatStream(ctx, input, cfg.ModelID, c.identifiers)
	if err != nil {
		return err
	}

	var last *openai.MessageStreamResponse
	for ev := range events {
		if ev.Err != nil {
			return ev.Err
		}
		ids := ev.Identifiers
		c.identifiers = &ids
		last = ev.Response
	}

	if last == nil || last.Role != model.RoleAssistant.String() {
		return openai.ErrMissingAIMessage
	}
	return c.persistMessage(ctx, chatID, editingID, last.AssistantMessage(chatID))
}

// =============================================================================
// EDIT AND REGENERATE
// =============================================================================

// StartEditing pre-fills the input with a user message's content and
// targets subsequent sends at its position. A no-op for unknown ids
// and non-user messages.
func (c *Conversation) StartEditing(messageID string) {
	idx := c.indexOf(messageID)
	if idx < 0 || c.messages[idx].Sender != model.RoleUser {
		return
	}

	c.editingMessageID = messageID
	c.input = c.messages[idx].Content
	c.viewState = ViewState{Kind: StateEditing, TargetID: c.nextEditingMessageID()}
}

// CancelEditing abandons an in-progress edit.
func (c *Conversation) CancelEditing() {
	c.editingMessageID = ""
	c.input = ""
	if c.chatID == "" {
		c.viewState = ViewState{Kind: StateNewChat}
	} else {
		c.viewState = ViewState{Kind: StateReady}
	}
}

// Regenerate re-sends the prompt preceding an assistant message and
// replaces that message in place with the fresh reply. Failures are
// converted into a system notice like Send failures.
func (c *Conversation) Regenerate(ctx context.Context, cfg TurnConfig, messageID string) {
	chatID := c.chatID
	idx := c.indexOf(messageID)
	if chatID == "" || idx < 1 {
		return
	}

	c.regeneratingMessageID = messageID
	if err := c.regenerateTurn(ctx, cfg, chatID, messageID, idx); err != nil {
		c.regeneratingMessageID = ""
		c.displayError(ctx, err, cfg, chatID, "")
	}
}

func (c *Conversation) regenerateTurn(ctx context.Context, cfg TurnConfig, chatID, messageID string, idx int) error {
	if cfg.ModelID == "" {
		return ErrMissingModelID
	}

	history, err := c.store.FetchMessages(ctx, chatID, nil)
	if err != nil {
		log.Printf("chat: history fetch failed, sending without context: %v", err)
		history = nil
	}

	resp, err := c.orchestrator.Chat(ctx, cfg.API, cfg.ModelID, cfg.Temperature, history)
	if err != nil {
		return err
	}

	aiMsg, err := resp.AIMessage(chatID)
	if err != nil {
		return err
	}

	// Replace in place, preserving the message's position.
	if i := c.indexOf(messageID); i >= 0 {
		c.messages[i] = aiMsg
	}
	c.regeneratingMessageID = ""
	return c.store.ReplaceMessage(ctx, messageID, aiMsg)
}

// =============================================================================
// STATE TRANSITIONS
// =============================================================================

// sendingMessage applies the optimistic in-memory update for an
// outgoing or arriving message.
func (c *Conversation) sendingMessage(msg *model.Message, chatID string) {
	c.chatID = chatID
	c.updateOrAppend(msg)
	c.input = ""
	c.focusedMessageID = msg.ID

	if msg.Sender == model.RoleUser {
		if c.editingMessageID == "" {
			c.viewState = ViewState{Kind: StateLoading}
		} else {
			c.viewState = ViewState{Kind: StateEditing, TargetID: c.nextEditingMessageID()}
		}
	} else {
		c.viewState = ViewState{Kind: StateReady}
		c.pagination.HasNext = true
	}
}

// persistMessage lands a message in memory and in the store. Outside
// an edit it appends and saves; during an edit it replaces the message
// at the edited position, or the assistant turn right after it when
// the new message is an assistant reply.
func (c *Conversation) persistMessage(ctx context.Context, chatID, editingID string, msg *model.Message) error {
	if editingID != "" {
		if idx := c.indexOf(editingID); idx >= 0 {
			target := idx
			if msg.Sender == model.RoleAssistant {
				target = idx + 1
			}
			if target < len(c.messages) {
				current := c.messages[target]
				c.messageEdited(current, msg)
				return c.store.ReplaceMessage(ctx, current.ID, msg)
			}
		}
		// The edited message has no following turn to replace; the
		// fresh reply is appended instead.
		c.editingMessageID = ""
	}

	c.sendingMessage(msg, chatID)
	return c.store.SaveMessage(ctx, chatID, msg)
}

// messageEdited swaps current for new at current's position. An
// assistant replacement completes the edit.
func (c *Conversation) messageEdited(current, replacement *model.Message) {
	idx := c.indexOf(current.ID)
	if idx < 0 {
		return
	}

	c.messages[idx] = replacement
	c.input = ""

	if replacement.Sender == model.RoleAssistant {
		c.editingMessageID = ""
		c.viewState = ViewState{Kind: StateReady}
	}
}

// nextEditingMessageID is the id of the message right after the one
// being edited: the assistant turn an in-flight edit will replace.
func (c *Conversation) nextEditingMessageID() string {
	idx := c.indexOf(c.editingMessageID)
	if idx < 0 || idx+1 >= len(c.messages) {
		return ""
	}
	return c.messages[idx+1].ID
}

func (c *Conversation) updateOrAppend(msg *model.Message) {
	if idx := c.indexOf(msg.ID); idx >= 0 {
		c.messages[idx] = msg
		return
	}
	c.messages = append(c.messages, msg)
}

func (c *Conversation) indexOf(messageID string) int {
	for i, m := range c.messages {
		if m.ID == messageID {
			return i
		}
	}
	return -1
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"github.com/jonathalimax/cortexia-app/internal/model"
)

// =============================================================================
// REQUEST BODIES
// =============================================================================

// MessageBody is one conversation turn on the wire.
type MessageBody struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatBody is the one-shot chat completion request.
type ChatBody struct {
	Model       string        `json:"model"`
	Messages    []MessageBody `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// AssistantBody creates an assistant bound to a model.
type AssistantBody struct {
	Model string `json:"model"`
}

// RunBody starts a streamed run of an assistant on a thread.
type RunBody struct {
	AssistantID string `json:"assistant_id"`
	Stream      bool   `json:"stream"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// GenericResponse covers the create-assistant and create-thread
// replies, where only the minted id matters.
type GenericResponse struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
}

// MessageResponse is the one-shot chat completion reply.
type MessageResponse struct {
	ID        string   `json:"id"`
	Model     string   `json:"model"`
	CreatedAt int64    `json:"created_at"`
	Choices   []Choice `json:"choices"`
	Usage     Usage    `json:"usage"`
}

// Choice is one completion alternative.
type Choice struct {
	Message ChoiceMessage `json:"message"`
}

// ChoiceMessage is the content of a completion choice.
type ChoiceMessage struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// Usage carries the token statistics of a completion.
type Usage struct {
	CompletionTokens int `json:"completion_tokens"`
	PromptTokens     int `json:"prompt_tokens"`
}

// MessageStreamResponse is a thread message as delivered by the
// create-message call and the run event stream.
type MessageStreamResponse struct {
	ID        string          `json:"id"`
	CreatedAt int64           `json:"created_at"`
	ThreadID  string          `json:"thread_id"`
	Role      string          `json:"role"`
	Content   []StreamContent `json:"content"`
}

// StreamContent is one content block of a thread message.
type StreamContent struct {
	Type string     `json:"type"`
	Text StreamText `json:"text"`
}

// StreamText holds the textual payload of a content block.
type StreamText struct {
	Value string `json:"value"`
}

// Text concatenates the message's text blocks.
func (r *MessageStreamResponse) Text() string {
	var out string
	for _, c := range r.Content {
		if c.Type == "text" {
			out += c.Text.Value
		}
	}
	return out
}

// ModelsResponse is the reply of the models endpoint.
type ModelsResponse struct {
	Data []Model `json:"data"`
}

// Model is one entry of the provider model list.
type Model struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by"`
}

// =============================================================================
// COST AND MESSAGE DERIVATION
// =============================================================================

// Cost is the dollar cost of the completion, computed on the side
// matching the response's role: completion tokens for an assistant
// reply, prompt tokens for a user echo. Both the user message and the
// assistant reply of a turn carry this same value. Zero for unknown
// models or a response without choices.
func (r *MessageResponse) Cost() float64 {
	if len(r.Choices) == 0 {
		return 0
	}
	role := model.Role(r.Choices[0].Message.Role)
	return model.UsageCost(r.Model, role, r.Usage.PromptTokens, r.Usage.CompletionTokens)
}

// AIMessage converts the first completion choice into an assistant
// message carrying its completion tokens and the response cost.
// Returns ErrMissingAIMessage when the response has no choices.
func (r *MessageResponse) AIMessage(chatID string) (*model.Message, error) {
	if len(r.Choices) == 0 {
		return nil, ErrMissingAIMessage
	}

	cost := r.Cost()
	msg := model.NewAssistantMessage(chatID, r.Choices[0].Message.Content)
	if r.ID != "" {
		msg.ID = r.ID
	}
	msg.Tokens = r.Usage.CompletionTokens
	msg.Costs = &cost
	return msg, nil
}

// AssistantMessage converts a thread message into an assistant
// message. Thread replies carry no usage statistics, so the provider
// message id is kept and tokens and costs stay zero.
func (r *MessageStreamResponse) AssistantMessage(chatID string) *model.Message {
	msg := model.NewAssistantMessage(chatID, r.Text())
	if r.ID != "" {
		msg.ID = r.ID
	}
	return msg
}

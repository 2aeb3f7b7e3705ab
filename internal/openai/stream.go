// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/jonathalimax/cortexia-app/internal/model"
	"github.com/jonathalimax/cortexia-app/internal/network"
	"github.com/jonathalimax/cortexia-app/internal/provider"
)

// Run stream event names.
const (
	eventMessageCompleted = "thread.message.completed"
	eventDone             = "done"
)

// StreamEvent is one element of a chat stream: either a thread
// message paired with the identifiers it belongs to, or a terminal
// error. After an event with Err set, no further events follow.
type StreamEvent struct {
	Response    *MessageStreamResponse
	Identifiers model.ProviderIdentifiers
	Err         error
}

// ChatStream sends a message through the OpenAI thread/run protocol
// and streams the responses. When identifiers is nil a fresh assistant
// and thread are created first; otherwise the existing ones are
// reused. The returned channel yields the stored user message as its
// first event and the completed assistant message as its last, then
// closes. Setup failures (connectivity, credentials, assistant or
// thread creation) are reported synchronously.
func (s *Service) ChatStream(ctx context.Context, message, modelID string, identifiers *model.ProviderIdentifiers) (<-chan StreamEvent, error) {
	if s.reach != nil {
		baseURL, err := s.client.BaseURL(provider.APIOpenAI)
		if err != nil {
			return nil, err
		}
		if err := s.reach.Check(ctx, baseURL); err != nil {
			return nil, err
		}
	}

	var ids model.ProviderIdentifiers
	if identifiers != nil {
		ids = *identifiers
	} else {
		created, err := s.createConversation(ctx, modelID)
		if err != nil {
			return nil, err
		}
		ids = created
	}

	events := make(chan StreamEvent, 1)
	go s.runStream(ctx, message, ids, events)
	return events, nil
}

// createConversation mints an assistant bound to the model and a
// thread to hold the conversation.
func (s *Service) createConversation(ctx context.Context, modelID string) (model.ProviderIdentifiers, error) {
	var ids model.ProviderIdentifiers

	body, err := json.Marshal(AssistantBody{Model: modelID})
	if err != nil {
		return ids, fmt.Errorf("encode assistant body: %w", err)
	}

	raw, err := s.client.Request(ctx, provider.APIOpenAI, provider.EndpointCreateAssistant(), body)
	if err != nil {
		return ids, err
	}
	var assistant GenericResponse
	if err := json.Unmarshal(raw, &assistant); err != nil {
		return ids, fmt.Errorf("decode assistant response: %w", err)
	}

	raw, err = s.client.Request(ctx, provider.APIOpenAI, provider.EndpointCreateThread(), nil)
	if err != nil {
		return ids, err
	}
	var thread GenericResponse
	if err := json.Unmarshal(raw, &thread); err != nil {
		return ids, fmt.Errorf("decode thread response: %w", err)
	}

	ids.AssistantID = assistant.ID
	ids.ThreadID = thread.ID
	log.Printf("openai: created assistant %s on thread %s", assistant.ID, thread.ID)
	return ids, nil
}

// runStream appends the user message to the thread, starts a streamed
// run and forwards its events. Closes the channel when the run
// finishes or fails.
func (s *Service) runStream(ctx context.Context, message string, ids model.ProviderIdentifiers, events chan<- StreamEvent) {
	defer close(events)

	fail := func(err error) {
		select {
		case events <- StreamEvent{Identifiers: ids, Err: err}:
		case <-ctx.Done():
		}
	}

	body, err := json.Marshal(MessageBody{Role: model.RoleUser.String(), Content: message})
	if err != nil {
		fail(fmt.Errorf("encode message body: %w", err))
		return
	}

	raw, err := s.client.Request(ctx, provider.APIOpenAI, provider.EndpointCreateMessage(ids.ThreadID), body)
	if err != nil {
		fail(err)
		return
	}
	var initial MessageStreamResponse
	if err := json.Unmarshal(raw, &initial); err != nil {
		fail(fmt.Errorf("decode message response: %w", err))
		return
	}

	// Yield the stored user message before the run starts.
	select {
	case events <- StreamEvent{Response: &initial, Identifiers: ids}:
	case <-ctx.Done():
		return
	}

	body, err = json.Marshal(RunBody{AssistantID: ids.AssistantID, Stream: true})
	if err != nil {
		fail(fmt.Errorf("encode run body: %w", err))
		return
	}

	stream, err := s.client.Stream(ctx, provider.APIOpenAI, provider.EndpointCreateRun(ids.ThreadID), body)
	if err != nil {
		fail(err)
		return
	}
	defer stream.Close()

	reader := network.NewSSEReader(stream)

	// Set once the run reports the assistant message as completed;
	// the next data payload is the final message.
	var completed bool

	for {
		event, data, err := reader.ReadEvent()
		if err != nil {
			if err != io.EOF {
				fail(fmt.Errorf("read run stream: %w", err))
			}
			return
		}

		if event == eventMessageCompleted {
			completed = true
		}

		if completed && len(data) > 0 {
			var final MessageStreamResponse
			if err := json.Unmarshal(data, &final); err != nil {
				fail(fmt.Errorf("decode run stream message: %w", err))
				return
			}

			select {
			case events <- StreamEvent{Response: &final, Identifiers: ids}:
			case <-ctx.Done():
			}
			return
		}

		if event == eventDone {
			return
		}
		// Unrecognized events carry run bookkeeping; skip them.
	}
}

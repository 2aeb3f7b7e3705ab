// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jonathalimax/cortexia-app/internal/model"
	"github.com/jonathalimax/cortexia-app/internal/provider"
)

// ErrMissingAIMessage indicates a completion response without choices.
var ErrMissingAIMessage = errors.New("ai message not found in response")

// =============================================================================
// COLLABORATORS
// =============================================================================

// ModelCache persists provider model lists between sessions.
type ModelCache interface {
	Models(ctx context.Context) ([]Model, error)
	SaveModels(ctx context.Context, models []Model) error
}

// Reachability probes whether a host accepts connections.
type Reachability interface {
	Check(ctx context.Context, baseURL string) error
}

// =============================================================================
// SERVICE
// =============================================================================

// Service talks to the OpenAI-compatible chat APIs. It covers the
// one-shot completion used by every provider and the thread/run
// streaming protocol exclusive to OpenAI.
type Service struct {
	client *provider.Client
	cache  ModelCache
	reach  Reachability
}

// NewService creates a Service. cache and reach may be nil, disabling
// the local model cache and the pre-flight connectivity probe.
func NewService(client *provider.Client, cache ModelCache, reach Reachability) *Service {
	return &Service{
		client: client,
		cache:  cache,
		reach:  reach,
	}
}

// FetchModels returns the available OpenAI models, preferring the
// local cache unless forceRemote is set or the cache is empty. Remote
// results are written back to the cache.
func (s *Service) FetchModels(ctx context.Context, forceRemote bool) ([]Model, error) {
	log.Printf("openai: fetching models (forceRemote=%v)", forceRemote)

	if !forceRemote && s.cache != nil {
		cached, err := s.cache.Models(ctx)
		if err != nil {
			log.Printf("openai: model cache read failed: %v", err)
		} else if len(cached) > 0 {
			log.Printf("openai: returning %d cached models", len(cached))
			return cached, nil
		}
	}

	raw, err := s.client.Request(ctx, provider.APIOpenAI, provider.EndpointModels(), nil)
	if err != nil {
		return nil, err
	}

	var resp ModelsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode models response: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SaveModels(ctx, resp.Data); err != nil {
			log.Printf("openai: model cache write failed: %v", err)
		}
	}

	log.Printf("openai: fetched %d models from API", len(resp.Data))
	return resp.Data, nil
}

// Chat sends the conversation history as a one-shot completion to the
// given API and returns the decoded response. System notices are
// stripped from the history before it goes on the wire.
func (s *Service) Chat(ctx context.Context, api provider.API, modelID string, temperature float64, history []*model.Message) (*MessageResponse, error) {
	log.Printf("openai: sending chat completion via %s model=%s messages=%d", api, modelID, len(history))

	msgs := make([]MessageBody, 0, len(history))
	for _, m := range history {
		if m.Sender == model.RoleSystem {
			continue
		}
		msgs = append(msgs, MessageBody{Role: m.Sender.String(), Content: m.Content})
	}

	body, err := json.Marshal(ChatBody{
		Model:       modelID,
		Messages:    msgs,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("encode chat body: %w", err)
	}

	raw, err := s.client.Request(ctx, api, provider.EndpointChat(), body)
	if err != nil {
		return nil, err
	}

	var resp MessageResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	return &resp, nil
}

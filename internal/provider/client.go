// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/jonathalimax/cortexia-app/internal/network"
)

// =============================================================================
// COLLABORATOR CONTRACTS
// =============================================================================

// SecretStore loads backend credentials. Credentials are read on each
// request rather than cached, so out-of-band key rotation takes effect
// immediately.
type SecretStore interface {
	Load(key string) (string, error)
}

// BaseURLs resolves the base URL for each backend. OpenAI and
// OpenRouter come from static app configuration; Ollama comes from
// user settings and may be empty.
type BaseURLs struct {
	OpenAI     string
	OpenRouter string

	// Ollama returns the user-configured base URL, or empty when unset.
	Ollama func() string
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends authenticated requests to the selected backend.
type Client struct {
	transport *network.Transport
	secrets   SecretStore
	baseURLs  BaseURLs
}

// NewClient creates a provider client.
func NewClient(transport *network.Transport, secrets SecretStore, baseURLs BaseURLs) *Client {
	return &Client{
		transport: transport,
		secrets:   secrets,
		baseURLs:  baseURLs,
	}
}

// BaseURL resolves the base URL for the given backend.
func (c *Client) BaseURL(api API) (string, error) {
	switch api {
	case APIOpenRouter:
		return c.baseURLs.OpenRouter, nil
	case APIOllama:
		if c.baseURLs.Ollama == nil {
			return "", ErrMissingBaseURL
		}
		url := c.baseURLs.Ollama()
		if url == "" {
			return "", ErrMissingBaseURL
		}
		return url, nil
	default:
		return c.baseURLs.OpenAI, nil
	}
}

// Request sends a JSON request to the backend and returns the raw
// response body.
func (c *Client) Request(ctx context.Context, api API, endpoint Endpoint, body []byte) ([]byte, error) {
	log.Printf("provider: %s %s", api.Name(), endpoint.LogIdentifier())

	req, err := c.buildRequest(ctx, api, endpoint, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, mapStatusError(err)
	}
	return resp, nil
}

// Stream sends a request and returns the raw event stream. The caller
// must close the returned reader.
func (c *Client) Stream(ctx context.Context, api API, endpoint Endpoint, body []byte) (io.ReadCloser, error) {
	log.Printf("provider: %s %s (stream)", api.Name(), endpoint.LogIdentifier())

	req, err := c.buildRequest(ctx, api, endpoint, body)
	if err != nil {
		return nil, err
	}

	stream, err := c.transport.Stream(ctx, req)
	if err != nil {
		return nil, mapStatusError(err)
	}
	return stream, nil
}

// buildRequest resolves the URL and credential and assembles the
// authenticated request.
func (c *Client) buildRequest(ctx context.Context, api API, endpoint Endpoint, body []byte) (*http.Request, error) {
	baseURL, err := c.BaseURL(api)
	if err != nil {
		return nil, err
	}

	secretKey, err := c.secrets.Load(api.SecretKey())
	if err != nil || secretKey == "" {
		return nil, ErrMissingSecretKey
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, endpoint.Method, endpoint.URL(baseURL), reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+secretKey)
	if api == APIOpenAI {
		req.Header.Set("OpenAI-Beta", "assistants=v2")
	}

	return req, nil
}

// mapStatusError converts a 401 transport error into the credential
// error; everything else passes through untouched.
func mapStatusError(err error) error {
	var httpErr *network.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized {
		return ErrInvalidSecretKey
	}
	return err
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// API TYPE
// =============================================================================

// API identifies an AI backend.
type API string

const (
	APIOpenAI     API = "openAI"
	APIOpenRouter API = "openRouter"
	APIOllama     API = "ollama"
)

// ParseAPI maps a stored preference string to an API. Unknown values
// fall back to OpenAI, matching the default provider selection.
func ParseAPI(s string) API {
	switch API(s) {
	case APIOpenAI, APIOpenRouter, APIOllama:
		return API(s)
	default:
		return APIOpenAI
	}
}

// String returns the string representation of the API.
func (a API) String() string {
	return string(a)
}

// Name returns the human-readable backend name.
func (a API) Name() string {
	switch a {
	case APIOpenRouter:
		return "OpenRouter"
	case APIOllama:
		return "Ollama"
	default:
		return "OpenAI"
	}
}

// SecretKey returns the credential store key for this backend.
func (a API) SecretKey() string {
	switch a {
	case APIOpenRouter:
		return "openrouter_secret_key"
	case APIOllama:
		return "ollama_secret_key"
	default:
		return "openai_secret_key"
	}
}

// =============================================================================
// ERROR TYPES
// =============================================================================

var (
	// ErrMissingSecretKey indicates no credential is stored for the
	// selected backend.
	ErrMissingSecretKey = errors.New("secret key not found")

	// ErrInvalidSecretKey indicates the backend rejected the stored
	// credential (HTTP 401).
	ErrInvalidSecretKey = errors.New("invalid secret key")

	// ErrMissingBaseURL indicates no Ollama-compatible base URL has
	// been configured in user settings.
	ErrMissingBaseURL = errors.New("base URL not found")
)

// =============================================================================
// ENDPOINTS
// =============================================================================

// apiVersion is the URL path version segment shared by all backends.
const apiVersion = "v1"

// Endpoint describes one API operation: its path below the version
// segment and its HTTP method.
type Endpoint struct {
	Path   string
	Method string
}

// EndpointModels lists the models available on the backend.
func EndpointModels() Endpoint {
	return Endpoint{Path: "models", Method: "GET"}
}

// EndpointChat is the one-shot chat completion endpoint.
func EndpointChat() Endpoint {
	return Endpoint{Path: "chat/completions", Method: "POST"}
}

// EndpointCreateAssistant creates an assistant bound to a model.
func EndpointCreateAssistant() Endpoint {
	return Endpoint{Path: "assistants", Method: "POST"}
}

// EndpointCreateThread creates a thread for an assistant to work in.
func EndpointCreateThread() Endpoint {
	return Endpoint{Path: "threads", Method: "POST"}
}

// EndpointCreateMessage adds a message to a thread.
func EndpointCreateMessage(threadID string) Endpoint {
	return Endpoint{Path: "threads/" + threadID + "/messages", Method: "POST"}
}

// EndpointCreateRun starts a run on a thread.
func EndpointCreateRun(threadID string) Endpoint {
	return Endpoint{Path: "threads/" + threadID + "/runs", Method: "POST"}
}

// URL joins a base URL, the version segment and the endpoint path.
func (e Endpoint) URL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + apiVersion + "/" + strings.TrimPrefix(e.Path, "/")
}

// LogIdentifier returns a compact request descriptor for logging.
func (e Endpoint) LogIdentifier() string {
	return fmt.Sprintf("%s /%s/%s", e.Method, apiVersion, e.Path)
}

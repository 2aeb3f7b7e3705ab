// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider routes requests to the configured AI backend.
//
// Three backends are supported: OpenAI, OpenRouter, and any
// Ollama-compatible server. All three speak Bearer auth; OpenAI
// additionally requires the assistants beta header. OpenAI and
// OpenRouter resolve their base URL from static app configuration,
// while the Ollama-compatible URL comes from user settings and is an
// error when absent.
package provider

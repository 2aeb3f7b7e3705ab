// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package openai orchestrates completions against OpenAI-compatible
// backends.
//
// Two request shapes are supported. The one-shot chat completion posts
// the full conversation history and reads a single response; it works
// against all three backends. The thread/run protocol is OpenAI's
// assistants flow: an assistant and thread are created once per chat,
// each turn adds a message to the thread and starts a streamed run,
// and the final message arrives over a server-sent-event stream.
//
// The model list is cached locally and only refreshed from the remote
// API when the cache is empty or a refresh is forced.
package openai

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package network is the low-level HTTP transport shared by every
// provider client. It owns the pooled HTTP clients, outbound request
// pacing, response size limits, and the Server-Sent Events reader.
//
// Callers hand it a fully built request; the transport never inspects
// or rewrites provider-specific headers or bodies.
package network

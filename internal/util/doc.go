// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the cortexia engine.
//
// The helpers here are deliberately dependency-free: atomic file
// persistence used by the keychain and settings stores, and rune-safe
// string truncation used for chat previews.
package util

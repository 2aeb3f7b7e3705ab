// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package keychain stores provider credentials on disk.
//
// Each credential lives in its own file with owner-only permissions
// (0600) under the application data directory. Writes are atomic so a
// crash mid-save never leaves a truncated key behind.
package keychain

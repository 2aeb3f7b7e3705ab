// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings manages per-user preferences.
//
// Preferences live in a TOML file under the application data
// directory. A Manager guards them behind a mutex and can watch the
// file for out-of-band edits, reloading after a debounce so editors
// that write in several bursts trigger a single reload.
//
// Callers take an immutable Snapshot per operation instead of reading
// ambient mutable state mid-flight.
package settings

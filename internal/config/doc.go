// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides static application configuration.
//
// Configuration file location (in order of precedence):
//   - ~/.cortexia/config.toml
//   - Built-in defaults
//
// Environment variables override whatever was loaded from disk. The
// values here are fixed per installation: provider base URLs and the
// deep-link scheme. Per-user preferences live in package settings.
package config

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package deeplink builds the in-app guidance links embedded in error
// notices. A link points the user at the settings screen that fixes
// the problem: the base URL field, the secret key field, or the model
// picker.
package deeplink

// Link identifies a settings destination.
type Link string

const (
	BaseURL   Link = "base_url"
	SecretKey Link = "secret_key"
	Model     Link = "model"
)

// URL renders the link under the given scheme, e.g.
// "cortexia://secret_key".
func (l Link) URL(scheme string) string {
	return scheme + "://" + string(l)
}

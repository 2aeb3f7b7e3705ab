// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package deeplink

import "testing"

func TestLinkURL(t *testing.T) {
	tests := []struct {
		link Link
		want string
	}{
		{BaseURL, "cortexia://base_url"},
		{SecretKey, "cortexia://secret_key"},
		{Model, "cortexia://model"},
	}

	for _, tt := range tests {
		if got := tt.link.URL("cortexia"); got != tt.want {
			t.Errorf("URL = %q, want %q", got, tt.want)
		}
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/jonathalimax/cortexia-app/internal/util"
)

// =============================================================================
// SETTINGS STRUCTURE
// =============================================================================

// Temperature bounds accepted by the providers.
const (
	MinTemperature     = 0.0
	MaxTemperature     = 2.0
	DefaultTemperature = 1.0
)

// Settings holds the user preferences consumed by the chat engine.
type Settings struct {
	// SelectedAPI is the active backend: openAI, openRouter or ollama.
	SelectedAPI string `toml:"selected_api"`

	// SelectedModelID is the model used for completions. Empty means
	// the user has not picked one yet.
	SelectedModelID string `toml:"selected_model_id"`

	// Temperature is the sampling temperature, clamped to [0, 2].
	Temperature float64 `toml:"temperature"`

	// WordWrap toggles soft wrapping of rendered messages.
	WordWrap bool `toml:"word_wrap"`

	// OllamaBaseURL is the user-supplied base URL for Ollama-compatible
	// servers. Required when SelectedAPI is ollama.
	OllamaBaseURL string `toml:"ollama_base_url"`
}

// Default returns the built-in preferences.
func Default() Settings {
	return Settings{
		SelectedAPI: "openAI",
		Temperature: DefaultTemperature,
		WordWrap:    true,
	}
}

// Clamp forces out-of-range values back to usable ones.
func (s *Settings) Clamp() {
	if s.Temperature < MinTemperature {
		s.Temperature = MinTemperature
	}
	if s.Temperature > MaxTemperature {
		s.Temperature = MaxTemperature
	}
	if s.SelectedAPI == "" {
		s.SelectedAPI = "openAI"
	}
}

// =============================================================================
// FILE I/O
// =============================================================================

// LoadFromPath reads preferences from a TOML file. A missing file is
// not an error; defaults are returned.
func LoadFromPath(path string) (Settings, error) {
	s := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &s); err != nil {
			return Default(), fmt.Errorf("failed to decode settings: %w", err)
		}
	}

	s.Clamp()
	return s, nil
}

// SaveToPath writes preferences to a TOML file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveToPath(s Settings, path string) error {
	s.Clamp()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

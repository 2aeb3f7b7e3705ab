// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/jonathalimax/cortexia-app/internal/util"
)

// =============================================================================
// CONFIG STRUCTURE
// =============================================================================

// Config holds the static application configuration.
type Config struct {
	// OpenAIBaseURL is the base URL for the OpenAI API.
	OpenAIBaseURL string `toml:"openai_base_url"`

	// OpenRouterBaseURL is the base URL for the OpenRouter API.
	OpenRouterBaseURL string `toml:"openrouter_base_url"`

	// DeepLinkScheme is the URL scheme used by guidance links embedded
	// in error notices.
	DeepLinkScheme string `toml:"deeplink_scheme"`

	// DataDir is the directory for persisted state (database,
	// credentials, settings).
	DataDir string `toml:"data_dir"`
}

// =============================================================================
// DEFAULTS AND PATHS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OpenAIBaseURL:     "https://api.openai.com",
		OpenRouterBaseURL: "https://openrouter.ai/api",
		DeepLinkScheme:    "cortexia",
		DataDir:           defaultDataDir(),
	}
}

// defaultDataDir returns the default application data directory.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".cortexia")
	}
	return filepath.Join(home, ".cortexia")
}

// ConfigPath returns the path of the configuration file.
func ConfigPath() string {
	return filepath.Join(defaultDataDir(), "config.toml")
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file, falling back to defaults when it
// does not exist. Environment overrides are applied last.
func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

// LoadFromPath loads configuration from a specific file path with
// validation. A missing file is not an error; defaults are used.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides replaces config values from environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CORTEXIA_OPENAI_BASE_URL"); v != "" {
		c.OpenAIBaseURL = v
	}
	if v := os.Getenv("CORTEXIA_OPENROUTER_BASE_URL"); v != "" {
		c.OpenRouterBaseURL = v
	}
	if v := os.Getenv("CORTEXIA_DATA_DIR"); v != "" {
		c.DataDir = v
	}
}

// SetDefaults fills empty fields with their built-in values.
func (c *Config) SetDefaults() {
	def := Default()
	if c.OpenAIBaseURL == "" {
		c.OpenAIBaseURL = def.OpenAIBaseURL
	}
	if c.OpenRouterBaseURL == "" {
		c.OpenRouterBaseURL = def.OpenRouterBaseURL
	}
	if c.DeepLinkScheme == "" {
		c.DeepLinkScheme = def.DeepLinkScheme
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"openai_base_url":     c.OpenAIBaseURL,
		"openrouter_base_url": c.OpenRouterBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s is not a valid URL: %q", name, raw)
		}
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to its default path.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func Save(cfg *Config) error {
	return SaveToPath(cfg, ConfigPath())
}

// SaveToPath writes the configuration to a specific file path.
func SaveToPath(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// =============================================================================
// DERIVED PATHS
// =============================================================================

// DatabasePath returns the path of the SQLite database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "cortexia.db")
}

// SettingsPath returns the path of the user settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.DataDir, "settings.toml")
}

// KeychainDir returns the directory holding stored credentials.
func (c *Config) KeychainDir() string {
	return filepath.Join(c.DataDir, "keys")
}

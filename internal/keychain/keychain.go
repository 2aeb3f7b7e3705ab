// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package keychain

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathalimax/cortexia-app/internal/util"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrNotFound indicates no credential is stored under the given key.
var ErrNotFound = errors.New("credential not found")

// =============================================================================
// STORE
// =============================================================================

// Store is a file-backed credential store. Each credential is one file
// under dir, stored with restricted permissions (0600).
type Store struct {
	dir string
}

// NewStore creates a credential store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the default credential directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".cortexia", "keys")
	}
	return filepath.Join(home, ".cortexia", "keys")
}

// Load reads the credential stored under key.
func (s *Store) Load(key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save stores the credential under key.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func (s *Store) Save(value, key string) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	if err := util.AtomicWriteFile(s.path(key), []byte(value), 0600); err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}
	return nil
}

// Delete removes the credential stored under key. Deleting an absent
// credential is not an error.
func (s *Store) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

// Exists checks whether a credential is stored under key.
func (s *Store) Exists(key string) bool {
	_, err := os.Stat(s.path(key))
	return err == nil
}

// path maps a credential key to its backing file. Path separators are
// stripped so a key can never escape the store directory.
func (s *Store) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, safe)
}

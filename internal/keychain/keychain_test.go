// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package keychain

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "keys"))

	if err := store.Save("sk-test-123", "openai_secret_key"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load("openai_secret_key")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != "sk-test-123" {
		t.Errorf("Load = %q, want %q", got, "sk-test-123")
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Load("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Save("value", "key"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !store.Exists("key") {
		t.Fatal("credential should exist after save")
	}

	if err := store.Delete("key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Exists("key") {
		t.Error("credential should not exist after delete")
	}

	// Deleting again is not an error.
	if err := store.Delete("key"); err != nil {
		t.Errorf("deleting absent credential: %v", err)
	}
}

func TestStoreOverwrite(t *testing.T) {
	store := NewStore(t.TempDir())

	store.Save("old", "key")
	if err := store.Save("new", "key"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, _ := store.Load("key")
	if got != "new" {
		t.Errorf("Load = %q, want new", got)
	}
}

func TestStorePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions not applicable on windows")
	}

	dir := t.TempDir()
	store := NewStore(dir)
	store.Save("secret", "key")

	info, err := os.Stat(filepath.Join(dir, "key"))
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("credential file mode = %o, want 0600", perm)
	}
}

func TestStoreKeyEscapeStripped(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := store.Save("v", "../escape"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "..", "escape")); err == nil {
		t.Error("credential must not be written outside the store directory")
	}
}

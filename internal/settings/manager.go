// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// MANAGER
// =============================================================================

// watchDebounce is how long file events must stay quiet before the
// settings file is reloaded.
const watchDebounce = 250 * time.Millisecond

// Manager owns the live settings and keeps them in sync with the
// backing file.
type Manager struct {
	path string

	mu      sync.RWMutex
	current Settings

	onChange func(Settings)

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
}

// NewManager loads the settings file and returns a manager for it.
func NewManager(path string) (*Manager, error) {
	s, err := LoadFromPath(path)
	if err != nil {
		return nil, err
	}

	return &Manager{
		path:    path,
		current: s,
	}, nil
}

// Snapshot returns a copy of the current settings. The copy never
// changes under the caller, even if the file is edited mid-operation.
func (m *Manager) Snapshot() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Update applies fn to the settings and persists the result.
func (m *Manager) Update(fn func(*Settings)) error {
	m.mu.Lock()
	fn(&m.current)
	m.current.Clamp()
	s := m.current
	m.mu.Unlock()

	return SaveToPath(s, m.path)
}

// OnChange registers a callback invoked after every reload triggered
// by an external file edit.
func (m *Manager) OnChange(fn func(Settings)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// =============================================================================
// FILE WATCHING
// =============================================================================

// Watch reloads the settings whenever the backing file changes.
// Events are debounced so editors that save in several writes cause a
// single reload.
func (m *Manager) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory, not the file: atomic saves replace the file
	// and break a direct watch.
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.watcher = watcher
	m.cancel = cancel

	go m.processEvents(ctx)
	return nil
}

// processEvents consumes watcher events with debounce.
func (m *Manager) processEvents(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(m.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			m.reload()

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("settings watcher error: %v", err)
		}
	}
}

// reload re-reads the file and notifies the change callback.
func (m *Manager) reload() {
	s, err := LoadFromPath(m.path)
	if err != nil {
		log.Printf("settings reload failed: %v", err)
		return
	}

	m.mu.Lock()
	m.current = s
	fn := m.onChange
	m.mu.Unlock()

	log.Printf("settings reloaded from %s", m.path)
	if fn != nil {
		fn(s)
	}
}

// Close stops watching and releases resources.
func (m *Manager) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

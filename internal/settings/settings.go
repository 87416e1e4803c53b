// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings persists the viewer session between runs: the two file
// paths, the active timestamp pattern and the recently used patterns.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/chronoschism/internal/util"
)

// FileName is the settings file inside the config directory.
const FileName = "settings.json"

// DefaultHistorySize is the number of patterns History keeps.
const DefaultHistorySize = 5

// State is the persisted session.
type State struct {
	LeftPath  string   `json:"left_file_path,omitempty"`
	RightPath string   `json:"right_file_path,omitempty"`
	Pattern   string   `json:"timestamp_pattern"`
	History   []string `json:"timestamp_history"`
}

// Clone returns a copy of s that shares no slices with it.
func (s State) Clone() State {
	s.History = append([]string(nil), s.History...)
	return s
}

// =============================================================================
// MOST-RECENTLY-USED PATTERNS
// =============================================================================

// History is a bounded most-recently-used list of patterns. The newest entry
// is first. Not safe for concurrent use.
type History struct {
	items []string
	limit int
}

// NewHistory returns an empty history holding at most limit entries. A
// non-positive limit means DefaultHistorySize.
func NewHistory(limit int, items ...string) *History {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	h := &History{limit: limit}
	// Oldest first so the first argument ends up most recent.
	for i := len(items) - 1; i >= 0; i-- {
		h.Push(items[i])
	}
	return h
}

// Push records pattern as the most recent entry. An entry that is already
// present moves to the front; the oldest entry falls off past the limit.
// Empty patterns are ignored.
func (h *History) Push(pattern string) {
	if pattern == "" {
		return
	}
	for i, existing := range h.items {
		if existing == pattern {
			h.items = append(h.items[:i], h.items[i+1:]...)
			break
		}
	}
	h.items = append([]string{pattern}, h.items...)
	if len(h.items) > h.limit {
		h.items = h.items[:h.limit]
	}
}

// Items returns the entries, newest first.
func (h *History) Items() []string {
	return append([]string(nil), h.items...)
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.items)
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Manager loads and saves State.
type Manager interface {
	Load() (State, error)
	Save(State) error
}

// FileManager stores State as JSON at Path.
type FileManager struct {
	Path string
	mu   sync.Mutex
}

// NewFileManager returns a manager for FileName inside dir.
func NewFileManager(dir string) *FileManager {
	return &FileManager{Path: filepath.Join(dir, FileName)}
}

// Load reads the settings file. A missing file yields the zero State.
func (m *FileManager) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read settings: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode settings %s: %w", m.Path, err)
	}
	return st, nil
}

// Save writes st atomically.
func (m *FileManager) Save(st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st.History == nil {
		st.History = []string{}
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := util.AtomicWriteFile(m.Path, data, 0600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// MemoryManager keeps State in memory. Useful for tests and for running
// with persistence disabled.
type MemoryManager struct {
	mu    sync.Mutex
	state State
	saves int
}

// Load returns the last saved state.
func (m *MemoryManager) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone(), nil
}

// Save stores st.
func (m *MemoryManager) Save(st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = st.Clone()
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryManager) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch reports changes to the files being compared.
//
// Editors and log rotators often replace a file by renaming a new one over
// it, which drops a watch placed on the file itself. The watcher therefore
// watches the containing directories and filters events by file name.
// Bursts of events are debounced per file and reloads are rate limited.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/jeranaias/chronoschism/internal/logging"
)

// =============================================================================
// TYPES
// =============================================================================

// Event reports that a watched file changed.
type Event struct {
	Path    string
	Removed bool // the file no longer exists under Path
}

// Options configures a Watcher.
type Options struct {
	// Debounce is how long a file must stay quiet before its event fires.
	Debounce time.Duration
	// MaxPerSecond caps emitted events. Excess changes stay pending.
	MaxPerSecond int
	// Tick is how often pending changes are checked. Defaults to Debounce/2,
	// at least 10ms.
	Tick time.Duration
}

type pendingChange struct {
	at      time.Time
	removed bool
}

// Watcher watches a small set of files.
type Watcher struct {
	fs      *fsnotify.Watcher
	opts    Options
	limiter *rate.Limiter
	events  chan Event

	mu      sync.Mutex
	files   map[string]bool // cleaned absolute paths
	dirs    map[string]int  // directory -> watched files in it
	pending map[string]pendingChange

	closeOnce sync.Once
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// New creates a watcher. Call Set to choose files and Run to start it.
func New(opts Options) (*Watcher, error) {
	if opts.Debounce < 0 {
		return nil, errors.New("debounce cannot be negative")
	}
	if opts.MaxPerSecond <= 0 {
		opts.MaxPerSecond = 2
	}
	if opts.Tick <= 0 {
		opts.Tick = opts.Debounce / 2
		if opts.Tick < 10*time.Millisecond {
			opts.Tick = 10 * time.Millisecond
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &Watcher{
		fs:      fsw,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.MaxPerSecond), 1),
		events:  make(chan Event, 8),
		files:   make(map[string]bool),
		dirs:    make(map[string]int),
		pending: make(map[string]pendingChange),
	}, nil
}

// Set replaces the watched files. Empty paths are skipped.
func (w *Watcher) Set(paths ...string) error {
	want := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		want[filepath.Clean(abs)] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for file := range w.files {
		if !want[file] {
			w.unwatchLocked(file)
		}
	}
	for file := range want {
		if w.files[file] {
			continue
		}
		dir := filepath.Dir(file)
		if w.dirs[dir] == 0 {
			if err := w.fs.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
		}
		w.dirs[dir]++
		w.files[file] = true
	}
	return nil
}

func (w *Watcher) unwatchLocked(file string) {
	delete(w.files, file)
	delete(w.pending, file)
	dir := filepath.Dir(file)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.fs.Remove(dir)
	}
}

// Files returns the watched paths.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}

// Events delivers debounced changes.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// =============================================================================
// EVENT LOOP
// =============================================================================

// Run processes file system events until ctx is cancelled or the watcher
// is closed. The Events channel is closed when Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)

	ticker := time.NewTicker(w.opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watch_error", "error", err)

		case now := <-ticker.C:
			for _, ev := range w.due(now) {
				select {
				case w.events <- ev:
					logging.WatchReload(ev.Path, "removed", ev.Removed)
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[path] {
		return
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.pending[path] = pendingChange{at: time.Now(), removed: true}
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.pending[path] = pendingChange{at: time.Now()}
	}
}

// due returns the changes that have been quiet for the debounce period and
// fit within the rate limit.
func (w *Watcher) due(now time.Time) []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []Event
	for path, change := range w.pending {
		if now.Sub(change.at) < w.opts.Debounce {
			continue
		}
		if !w.limiter.AllowN(now, 1) {
			break
		}
		out = append(out, Event{Path: path, Removed: change.removed})
		delete(w.pending, path)
	}
	return out
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fs.Close()
	})
	return err
}

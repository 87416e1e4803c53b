// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, opts Options, files ...string) *Watcher {
	t.Helper()
	w, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, w.Set(files...))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		w.Close()
		<-done
	})
	return w
}

func waitEvent(t *testing.T, w *Watcher, timeout time.Duration) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		return ev, ok
	case <-time.After(timeout):
		return Event{}, false
	}
}

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	left := filepath.Join(dir, "left.log")
	require.NoError(t, os.WriteFile(left, []byte("a\n"), 0644))

	w := startWatcher(t, Options{Debounce: 20 * time.Millisecond, MaxPerSecond: 100}, left)

	require.NoError(t, os.WriteFile(left, []byte("a\nb\n"), 0644))

	ev, ok := waitEvent(t, w, 3*time.Second)
	require.True(t, ok, "expected a change event")
	abs, _ := filepath.Abs(left)
	assert.Equal(t, abs, ev.Path)
	assert.False(t, ev.Removed)
}

func TestWatcher_ReportsReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(target, []byte("old\n"), 0644))

	w := startWatcher(t, Options{Debounce: 20 * time.Millisecond, MaxPerSecond: 100}, target)

	tmp := filepath.Join(dir, ".app.log.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("new\n"), 0644))
	require.NoError(t, os.Rename(tmp, target))

	ev, ok := waitEvent(t, w, 3*time.Second)
	require.True(t, ok)
	assert.Equal(t, "app.log", filepath.Base(ev.Path))
	assert.False(t, ev.Removed, "final state is a present file")
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "watched.log")
	require.NoError(t, os.WriteFile(watched, nil, 0644))

	w := startWatcher(t, Options{Debounce: 10 * time.Millisecond, MaxPerSecond: 100}, watched)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.log"), []byte("x"), 0644))

	_, ok := waitEvent(t, w, 200*time.Millisecond)
	assert.False(t, ok, "sibling changes must not be reported")
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "burst.log")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	w := startWatcher(t, Options{Debounce: 150 * time.Millisecond, MaxPerSecond: 100}, file)

	f, err := os.OpenFile(file, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		_, err := f.WriteString("line\n")
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	_, ok := waitEvent(t, w, 3*time.Second)
	require.True(t, ok)
	_, again := waitEvent(t, w, 400*time.Millisecond)
	assert.False(t, again, "a burst produces one event")
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "gone.log")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	w := startWatcher(t, Options{Debounce: 20 * time.Millisecond, MaxPerSecond: 100}, file)
	require.NoError(t, os.Remove(file))

	ev, ok := waitEvent(t, w, 3*time.Second)
	require.True(t, ok)
	assert.True(t, ev.Removed)
}

func TestWatcher_SetReplacesFiles(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	a := filepath.Join(dirA, "a.log")
	b := filepath.Join(dirB, "b.log")

	w, err := New(Options{})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Set(a, "", b))
	assert.Len(t, w.Files(), 2)
	assert.Len(t, w.dirs, 2)

	require.NoError(t, w.Set(b))
	assert.Len(t, w.Files(), 1)
	assert.Len(t, w.dirs, 1)
}

func TestWatcher_DueHonoursRateLimit(t *testing.T) {
	w, err := New(Options{Debounce: 0, MaxPerSecond: 1})
	require.NoError(t, err)
	defer w.Close()

	now := time.Now()
	w.pending["/x/a"] = pendingChange{at: now.Add(-time.Second)}
	w.pending["/x/b"] = pendingChange{at: now.Add(-time.Second)}

	assert.Len(t, w.due(now), 1)
	assert.Len(t, w.pending, 1, "the other change waits for a token")
	assert.Len(t, w.due(now.Add(1100*time.Millisecond)), 1)
	assert.Empty(t, w.pending)
}

func TestNew_RejectsNegativeDebounce(t *testing.T) {
	_, err := New(Options{Debounce: -time.Second})
	assert.Error(t, err)
}

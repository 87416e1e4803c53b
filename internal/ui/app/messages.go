// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chronoschism/internal/compare"
	"github.com/jeranaias/chronoschism/internal/watch"
)

// =============================================================================
// MESSAGES
// =============================================================================

// patternSettledMsg fires when the pattern input has been quiet for the
// debounce interval. Only the message carrying the latest id is acted on.
type patternSettledMsg struct {
	id int
}

// compareDoneMsg carries the outcome of a background comparison. seq
// identifies the request; older sequences are discarded.
type compareDoneMsg struct {
	seq        uint64
	comparison *compare.Comparison
	err        error
}

// fileChangedMsg reports a change to one of the compared files.
type fileChangedMsg struct {
	event watch.Event
}

// watchClosedMsg reports that the watcher stopped delivering events.
type watchClosedMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

// settleCmd waits for the debounce interval.
func settleCmd(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return patternSettledMsg{id: id}
	})
}

// compareCmd runs one comparison off the UI goroutine.
func compareCmd(ctx context.Context, c *compare.Comparer, seq uint64, req compare.Request) tea.Cmd {
	return func() tea.Msg {
		cmp, err := c.Compare(ctx, req)
		return compareDoneMsg{seq: seq, comparison: cmp, err: err}
	}
}

// waitForChange blocks until the watcher delivers an event.
func waitForChange(events <-chan watch.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return watchClosedMsg{}
		}
		return fileChangedMsg{event: ev}
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chronoschism/internal/ui/styles"
)

// =============================================================================
// BUSY SPINNER
// =============================================================================

// busyFrames stay ASCII so the indicator renders on any terminal.
var busyFrames = []string{"|", "/", "-", "\\"}

// BusySpinner is the inline indicator shown while a comparison runs.
type BusySpinner struct {
	spinner   spinner.Model
	active    bool
	startTime time.Time
}

// NewBusySpinner creates a stopped spinner.
func NewBusySpinner() BusySpinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: busyFrames,
		FPS:    time.Second / 10,
	}
	return BusySpinner{spinner: s}
}

// Start activates the spinner. The returned command drives the animation;
// starting an active spinner returns nil so only one tick loop runs.
func (b *BusySpinner) Start() tea.Cmd {
	if b.active {
		return nil
	}
	b.active = true
	b.startTime = time.Now()
	return b.spinner.Tick
}

// Stop deactivates the spinner. Pending ticks are dropped by Update.
func (b *BusySpinner) Stop() {
	b.active = false
}

// IsActive returns whether the spinner is running.
func (b *BusySpinner) IsActive() bool {
	return b.active
}

// Elapsed returns the time since Start.
func (b *BusySpinner) Elapsed() time.Duration {
	if b.startTime.IsZero() {
		return 0
	}
	return time.Since(b.startTime)
}

// Update advances the animation.
func (b BusySpinner) Update(msg tea.Msg) (BusySpinner, tea.Cmd) {
	if !b.active {
		return b, nil
	}
	var cmd tea.Cmd
	b.spinner, cmd = b.spinner.Update(msg)
	return b, cmd
}

// View renders the current frame, or nothing when stopped.
func (b BusySpinner) View() string {
	if !b.active {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(styles.Purple).
		Render(b.spinner.View())
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chronoschism/internal/diff"
	"github.com/jeranaias/chronoschism/internal/ui/styles"
	"github.com/jeranaias/chronoschism/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// MessageLevel selects how a status message is styled.
type MessageLevel int

const (
	MessageInfo MessageLevel = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// StatusBar is the bottom line of the viewer: alignment counts, the pattern
// state and a transient message.
type StatusBar struct {
	Width      int
	Stats      *diff.Stats   // nil until the first comparison finishes
	Pattern    string        // Active pattern
	PatternErr error         // Set while the typed pattern does not compile
	Busy       bool          // A comparison is running
	Spinner    string        // Spinner frame shown while busy
	Duration   time.Duration // Time taken by the last comparison
	Reused     bool          // The last comparison was served from cache

	message string
	level   MessageLevel
	theme   *styles.Theme
}

// NewStatusBar creates a new StatusBar component
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the status bar width
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetMessage shows text until it is replaced or cleared.
func (s *StatusBar) SetMessage(level MessageLevel, text string) {
	s.level = level
	s.message = text
}

// ClearMessage removes the current message.
func (s *StatusBar) ClearMessage() {
	s.message = ""
}

// Message returns the current message text.
func (s *StatusBar) Message() string {
	return s.message
}

// View renders the status bar
func (s *StatusBar) View() string {
	sep := s.theme.Separator.Render(" | ")

	left := []string{s.renderStats()}
	if s.Width >= 60 {
		left = append(left, s.renderPattern())
	}
	if s.Width >= 100 && s.Duration > 0 {
		timing := s.Duration.Round(time.Millisecond).String()
		if s.Reused {
			timing = "cached"
		}
		left = append(left, s.theme.StatusValue.Render(timing))
	}
	leftText := strings.Join(left, sep)

	rightText := s.renderMessage()

	// Keep the message on the right edge; the bar pads by one cell each side.
	inner := s.Width - 2
	gap := inner - lipgloss.Width(leftText) - lipgloss.Width(rightText)
	if gap < 1 {
		gap = 1
	}
	content := leftText + strings.Repeat(" ", gap) + rightText

	return s.theme.StatusBar.
		Width(s.Width).
		MaxWidth(s.Width).
		Render(content)
}

// renderStats renders the alignment counts, marked the same way as rows.
func (s *StatusBar) renderStats() string {
	if s.Stats == nil {
		return s.theme.StatusValue.Render("no comparison")
	}
	st := *s.Stats
	if st.TotalChanges() == 0 {
		return s.theme.SuccessStyle.Render(fmt.Sprintf("identical (%d)", st.Unchanged))
	}

	parts := []string{
		s.theme.Marker(diff.Added).Render(fmt.Sprintf("+%d", st.Added)),
		s.theme.Marker(diff.Deleted).Render(fmt.Sprintf("-%d", st.Deleted)),
		s.theme.Marker(diff.Moved).Render(fmt.Sprintf("↔%d", st.Moved)),
		s.theme.StatusValue.Render(fmt.Sprintf("=%d", st.Unchanged)),
	}
	return strings.Join(parts, " ")
}

// renderPattern shows the active pattern, or the error for the typed one.
func (s *StatusBar) renderPattern() string {
	if s.PatternErr != nil {
		return s.theme.ErrorStyle.Render(styles.StatusIndicators.Error + " pattern invalid")
	}
	if s.Pattern == "" {
		return s.theme.StatusKey.Render("pattern") + " " + s.theme.StatusValue.Render("none")
	}
	p := util.TruncateWidth(s.Pattern, 24)
	return s.theme.StatusKey.Render("pattern") + " " + s.theme.StatusValue.Render(p)
}

func (s *StatusBar) renderMessage() string {
	if s.Busy {
		return s.Spinner + " " + s.theme.StatusValue.Render("comparing")
	}
	if s.message == "" {
		return s.theme.StatusKey.Render("?") + s.theme.StatusValue.Render(" help")
	}

	max := s.Width / 2
	text := util.TruncateWidth(s.message, max)
	switch s.level {
	case MessageSuccess:
		return s.theme.RenderSuccess(text)
	case MessageWarning:
		return s.theme.RenderWarning(text)
	case MessageError:
		return s.theme.RenderError(text)
	default:
		return s.theme.StatusValue.Render(text)
	}
}

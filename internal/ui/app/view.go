// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chronoschism/internal/util"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the viewer.
// Layout: header (1) + input box (3) + panel titles (1) + viewport + status (1).
// handleResize sizes the viewport from the same constants.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	input := m.renderInput()
	status := m.status.View()

	var body string
	if m.showHelp {
		body = m.renderHelp()
	} else {
		body = m.diff.Header() + "\n" + m.renderBody()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, input, body, status)
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("chronoschism")
	files := m.leftPath.Value() + "  ↔  " + m.rightPath.Value()
	if m.leftPath.Value() == "" && m.rightPath.Value() == "" {
		files = "no files selected"
	}
	room := m.width - 2 - lipgloss.Width(title) - 2
	files = util.TruncateWidth(files, room)
	return m.theme.Header.
		Width(m.width).
		MaxWidth(m.width).
		Render(title + "  " + files)
}

// renderInput shows the focused input, or the pattern input when the diff
// has focus. An invalid pattern keeps the error border either way.
func (m Model) renderInput() string {
	var content string
	switch m.focus {
	case focusLeft:
		content = m.leftPath.View()
	case focusRight:
		content = m.rightPath.View()
	default:
		content = m.pattern.View()
	}

	box := m.theme.InputBox
	switch {
	case m.patternErr != nil && (m.focus == focusPattern || m.focus == focusView):
		box = m.theme.InputError
	case m.focus != focusView:
		box = m.theme.InputFocused
	}
	return box.Width(m.width - 2).Render(content)
}

func (m Model) renderBody() string {
	if m.diff.Result() == nil {
		return m.placeholder("Choose two log files with o and O, then edit the pattern with /")
	}
	if m.diff.Result().IsEmpty() {
		return m.placeholder("Both files are empty")
	}
	return m.viewport.View()
}

func (m Model) placeholder(text string) string {
	return lipgloss.NewStyle().
		Width(m.viewport.Width).
		Height(m.viewport.Height).
		Foreground(m.theme.LineNumber.GetForeground()).
		Italic(true).
		Render(text)
}

func (m Model) renderHelp() string {
	lines := strings.Split(m.help.View(), "\n")
	height := m.viewport.Height + panelHeaderHeight
	if len(lines) > height {
		lines = lines[:height]
	}
	return lipgloss.NewStyle().
		Height(height).
		Render(strings.Join(lines, "\n"))
}

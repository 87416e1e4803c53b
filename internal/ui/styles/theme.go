// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/chronoschism/internal/diff"
)

// Theme holds every style the viewer renders with.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// CHROME
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	PanelTitle  lipgloss.Style
	Separator   lipgloss.Style

	// ==========================================================================
	// INPUTS
	// ==========================================================================

	InputLabel   lipgloss.Style
	InputBox     lipgloss.Style
	InputFocused lipgloss.Style
	InputError   lipgloss.Style

	// ==========================================================================
	// DIFF ROWS
	// ==========================================================================

	LineNumber lipgloss.Style
	Filler     lipgloss.Style
	Cursor     lipgloss.Style
	Intraline  lipgloss.Style
	rows       map[diff.State]lipgloss.Style
	markers    map[diff.State]lipgloss.Style

	// ==========================================================================
	// STATUS
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusKey    lipgloss.Style
	StatusValue  lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
}

// Options selects the theme variant.
type Options struct {
	// Theme is "dark", "light" or empty to detect from the terminal.
	Theme   string
	NoColor bool
}

// NewTheme creates a theme and configures lipgloss's default renderer to
// match it.
func NewTheme(opts Options) *Theme {
	profile := termenv.ColorProfile()
	if opts.NoColor {
		profile = termenv.Ascii
	}

	isDark := termenv.HasDarkBackground()
	switch opts.Theme {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	}

	lipgloss.SetColorProfile(profile)
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{IsDark: isDark, ColorProfile: profile}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)
	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		Underline(true)
	t.Separator = lipgloss.NewStyle().
		Foreground(Overlay)

	t.InputLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)
	t.InputBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputFocused = t.InputBox.
		BorderForeground(Cyan)
	// Invalid patterns keep the border red whether or not the input has focus.
	t.InputError = t.InputBox.
		BorderForeground(Rose)

	t.LineNumber = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.Filler = lipgloss.NewStyle().
		Foreground(Overlay)
	t.Cursor = lipgloss.NewStyle().
		Background(SurfaceBright)
	t.Intraline = lipgloss.NewStyle().
		Background(AmberDeep).
		Foreground(Amber).
		Bold(true)

	t.rows = map[diff.State]lipgloss.Style{
		diff.Unchanged: lipgloss.NewStyle().Foreground(TextPrimary),
		diff.Added:     lipgloss.NewStyle().Foreground(Emerald).Background(EmeraldDeep),
		diff.Deleted:   lipgloss.NewStyle().Foreground(Rose).Background(RoseDeep),
		diff.Moved:     lipgloss.NewStyle().Foreground(Purple).Background(PurpleDeep),
	}
	t.markers = map[diff.State]lipgloss.Style{
		diff.Unchanged: lipgloss.NewStyle().Foreground(TextMuted),
		diff.Added:     lipgloss.NewStyle().Foreground(Emerald).Bold(true),
		diff.Deleted:   lipgloss.NewStyle().Foreground(Rose).Bold(true),
		diff.Moved:     lipgloss.NewStyle().Foreground(Purple).Bold(true),
	}

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.StatusValue = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)
	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
	t.WarningStyle = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)
}

// Row returns the text style for a line in the given state.
func (t *Theme) Row(state diff.State) lipgloss.Style {
	if s, ok := t.rows[state]; ok {
		return s
	}
	return t.rows[diff.Unchanged]
}

// Marker returns the style for a state's prefix marker.
func (t *Theme) Marker(state diff.State) lipgloss.Style {
	if s, ok := t.markers[state]; ok {
		return s
	}
	return t.markers[diff.Unchanged]
}

// RenderError renders message with the error indicator.
func (t *Theme) RenderError(message string) string {
	return t.ErrorStyle.Render(StatusIndicators.Error + " " + message)
}

// RenderSuccess renders message with the success indicator.
func (t *Theme) RenderSuccess(message string) string {
	return t.SuccessStyle.Render(StatusIndicators.Success + " " + message)
}

// RenderWarning renders message with the warning indicator.
func (t *Theme) RenderWarning(message string) string {
	return t.WarningStyle.Render(StatusIndicators.Warning + " " + message)
}

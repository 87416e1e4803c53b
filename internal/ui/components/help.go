// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/jeranaias/chronoschism/internal/ui/styles"
)

// =============================================================================
// HELP OVERLAY
// =============================================================================

const helpIntro = `# chronoschism

Compares two log files line by line. Text matching the **timestamp pattern**
is removed before lines are compared, so entries that only differ in their
time still line up.

`

const helpPatterns = `
## Pattern examples

| Log format | Pattern |
|---|---|
| ` + "`[2024-01-01 12:00:00] ...`" + ` | ` + "`\\[\\d{4}-\\d{2}-\\d{2} \\d{2}:\\d{2}:\\d{2}\\] `" + ` |
| ` + "`2024-01-01T12:00:00.123Z ...`" + ` | ` + "`^\\S+Z `" + ` |
| ` + "`Jan  1 12:00:00 host ...`" + ` | ` + "`^\\w{3} +\\d+ [\\d:]+ `" + ` |

An empty pattern compares lines exactly.
`

// Help renders the key reference as markdown.
type Help struct {
	bindings []key.Binding
	theme    *styles.Theme
	width    int

	// Rendering is cached per width; glamour is slow enough to notice on
	// every frame.
	cachedWidth int
	cached      string
}

// NewHelp creates a help overlay for bindings. Disabled bindings are skipped
// when rendering.
func NewHelp(theme *styles.Theme, bindings ...key.Binding) *Help {
	return &Help{
		bindings: bindings,
		theme:    theme,
		width:    80,
	}
}

// SetWidth sets the wrap width.
func (h *Help) SetWidth(width int) {
	h.width = width
}

// Markdown returns the unrendered help text.
func (h *Help) Markdown() string {
	var b strings.Builder
	b.WriteString(helpIntro)
	b.WriteString("## Keys\n\n| Key | Action |\n|---|---|\n")
	for _, binding := range h.bindings {
		if !binding.Enabled() {
			continue
		}
		hb := binding.Help()
		if hb.Key == "" {
			continue
		}
		fmt.Fprintf(&b, "| `%s` | %s |\n", hb.Key, hb.Desc)
	}
	b.WriteString(helpPatterns)
	return b.String()
}

// View renders the help. It falls back to the raw markdown when glamour
// cannot render.
func (h *Help) View() string {
	if h.cached != "" && h.cachedWidth == h.width {
		return h.cached
	}

	md := h.Markdown()
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(h.glamourStyle()),
		glamour.WithWordWrap(h.width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}

	h.cached = out
	h.cachedWidth = h.width
	return out
}

func (h *Help) glamourStyle() string {
	switch {
	case h.theme == nil:
		return "dark"
	case h.theme.ColorProfile == termenv.Ascii:
		return "notty"
	case h.theme.IsDark:
		return "dark"
	default:
		return "light"
	}
}

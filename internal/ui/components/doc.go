// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual building blocks of the log viewer.

# Components

SideBySide (side_by_side.go) - Two row-aligned panels with line numbers,
state markers, moved-block connectors and intra-line highlights.
StatusBar (statusbar.go) - Alignment counts, pattern state and messages.
Help (help.go) - Key reference rendered from markdown with Glamour.
BusySpinner (spinner.go) - Inline indicator while a comparison runs.

# Theme Integration

All components take a *styles.Theme:

	theme := styles.NewTheme(styles.Options{Theme: "dark"})
	view := components.NewSideBySide(theme)
	view.SetWidth(120)
	view.SetResult(result)
	rows := view.Rows()

Rows are rendered one per alignment entry so that a single viewport
scrolls both panels together.
*/
package components

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"fmt"
	"strings"
)

// Side selects one panel of a side-by-side rendering.
type Side int

const (
	// LeftSide is the panel of the first input
	LeftSide Side = iota
	// RightSide is the panel of the second input
	RightSide
)

// Line returns the entry's line on the given side, or nil.
func (e Entry) Line(side Side) *Line {
	if side == LeftSide {
		return e.Left
	}
	return e.Right
}

// =============================================================================
// PANEL TEXT
// =============================================================================

// FormatSide renders one panel: one row per entry, each prefixed with the
// entry's state marker. Rows whose line lives on the other side keep the
// marker and leave the text empty so both panels stay row-aligned.
func FormatSide(entries []Entry, side Side, newline string) string {
	rows := make([]string, len(entries))
	for i, e := range entries {
		text := ""
		if line := e.Line(side); line != nil {
			text = line.Text
		}
		rows[i] = e.State.Prefix() + text
	}
	return strings.Join(rows, newline)
}

// =============================================================================
// SINGLE COLUMN TEXT
// =============================================================================

// FormatText renders the result as one listing with both line numbers,
// suitable for terminals and the diff lexer. Moved entries show where the
// line went.
func FormatText(r *Result) string {
	var sb strings.Builder

	for _, e := range r.Entries {
		switch e.State {
		case Added:
			fmt.Fprintf(&sb, "+%6s %6d  %s\n", "", e.Right.Number, e.Right.Text)
		case Deleted:
			fmt.Fprintf(&sb, "-%6d %6s  %s\n", e.Left.Number, "", e.Left.Text)
		case Moved:
			fmt.Fprintf(&sb, "~%6d %6d  %s\n", e.Left.Number, e.Right.Number, e.Left.Text)
		default:
			fmt.Fprintf(&sb, " %6d %6d  %s\n", e.Left.Number, e.Right.Number, e.Left.Text)
		}
	}

	return sb.String()
}

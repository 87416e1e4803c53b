// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chronoschism/internal/diff"
	"github.com/jeranaias/chronoschism/internal/ui/styles"
)

func plainTheme() *styles.Theme {
	return styles.NewTheme(styles.Options{Theme: "dark", NoColor: true})
}

func ln(n int, text string) *diff.Line {
	return &diff.Line{Number: n, Text: text, Key: text}
}

// sampleResult: U, A, A, U, D, U
func sampleResult() *diff.Result {
	return diff.NewResult([]diff.Entry{
		{State: diff.Unchanged, Left: ln(1, "boot"), Right: ln(1, "boot")},
		{State: diff.Added, Right: ln(2, "extra one")},
		{State: diff.Added, Right: ln(3, "extra two")},
		{State: diff.Unchanged, Left: ln(2, "ready"), Right: ln(4, "ready")},
		{State: diff.Deleted, Left: ln(3, "gone")},
		{State: diff.Unchanged, Left: ln(4, "stop"), Right: ln(5, "stop")},
	})
}

func TestSideBySide_RowsMatchEntries(t *testing.T) {
	v := NewSideBySide(plainTheme())
	v.SetWidth(80)
	v.SetResult(sampleResult())

	rows := v.Rows()
	if len(rows) != 6 {
		t.Fatalf("Rows() returned %d rows, want 6", len(rows))
	}
	for i, row := range rows {
		if w := lipgloss.Width(row); w != 80 {
			t.Errorf("row %d width = %d, want 80: %q", i, w, row)
		}
	}

	if !strings.Contains(rows[1], "+ extra one") {
		t.Errorf("added row missing marker and text: %q", rows[1])
	}
	if !strings.Contains(rows[4], "- gone") {
		t.Errorf("deleted row missing marker and text: %q", rows[4])
	}
	if !strings.Contains(rows[3], "  2") || !strings.Contains(rows[3], "  4") {
		t.Errorf("unchanged row should show both line numbers: %q", rows[3])
	}
}

func TestSideBySide_AddedRowLeavesLeftBlank(t *testing.T) {
	v := NewSideBySide(plainTheme())
	v.SetWidth(60)
	v.SetResult(sampleResult())

	row := v.Rows()[1]
	left := row[:strings.Index(row, gutterPlain)]
	if strings.Contains(left, "extra") {
		t.Errorf("added line leaked into left panel: %q", left)
	}
}

func TestSideBySide_LineNumbersToggle(t *testing.T) {
	v := NewSideBySide(plainTheme())
	v.SetWidth(80)
	v.SetLineNumbers(false)
	v.SetResult(sampleResult())

	row := v.Rows()[0]
	if strings.Contains(row, "1 ") {
		t.Errorf("line numbers rendered while disabled: %q", row)
	}
	if v.numberWidth() != 0 {
		t.Errorf("numberWidth() = %d, want 0", v.numberWidth())
	}
}

func TestSideBySide_NumberWidthGrows(t *testing.T) {
	v := NewSideBySide(plainTheme())
	v.SetResult(diff.NewResult([]diff.Entry{
		{State: diff.Added, Right: ln(12345, "x")},
	}))
	if got := v.numberWidth(); got != 5 {
		t.Errorf("numberWidth() = %d, want 5", got)
	}
}

func TestSideBySide_TruncatesLongLines(t *testing.T) {
	v := NewSideBySide(plainTheme())
	v.SetWidth(40)
	long := strings.Repeat("x", 200)
	v.SetResult(diff.NewResult([]diff.Entry{
		{State: diff.Unchanged, Left: ln(1, long), Right: ln(1, long)},
	}))

	row := v.Rows()[0]
	if w := lipgloss.Width(row); w != 40 {
		t.Errorf("row width = %d, want 40", w)
	}
	if !strings.Contains(row, "…") {
		t.Errorf("truncated row should end in an ellipsis: %q", row)
	}
}

func TestSideBySide_ExpandsTabs(t *testing.T) {
	v := NewSideBySide(plainTheme())
	v.SetWidth(80)
	v.SetResult(diff.NewResult([]diff.Entry{
		{State: diff.Unchanged, Left: ln(1, "a\tb"), Right: ln(1, "a\tb")},
	}))

	row := v.Rows()[0]
	if strings.Contains(row, "\t") {
		t.Errorf("row still contains a tab: %q", row)
	}
	if !strings.Contains(row, "a   b") {
		t.Errorf("tab not expanded to the next stop: %q", row)
	}
}

func TestSideBySide_Navigation(t *testing.T) {
	v := NewSideBySide(plainTheme())
	v.SetResult(sampleResult())

	if !v.NextChange() || v.Cursor() != 1 {
		t.Fatalf("first NextChange: cursor = %d, want 1", v.Cursor())
	}
	if !v.NextChange() || v.Cursor() != 4 {
		t.Fatalf("second NextChange: cursor = %d, want 4", v.Cursor())
	}
	if v.NextChange() {
		t.Error("NextChange past the last change should return false")
	}
	if v.Cursor() != 4 {
		t.Errorf("cursor moved on failed NextChange: %d", v.Cursor())
	}

	if !v.PrevChange() || v.Cursor() != 1 {
		t.Fatalf("PrevChange: cursor = %d, want 1", v.Cursor())
	}
	if v.PrevChange() {
		t.Error("PrevChange before the first change should return false")
	}
}

func TestSideBySide_NavigationWithoutResult(t *testing.T) {
	v := NewSideBySide(plainTheme())

	if v.NextChange() || v.PrevChange() {
		t.Error("navigation without a result should fail")
	}
	if v.Cursor() != 0 {
		t.Errorf("Cursor() = %d, want 0", v.Cursor())
	}
}

func TestSideBySide_CursorClamped(t *testing.T) {
	v := NewSideBySide(plainTheme())
	v.SetResult(sampleResult())
	v.SetCursor(5)

	v.SetResult(diff.NewResult([]diff.Entry{
		{State: diff.Added, Right: ln(1, "only")},
	}))
	if v.Cursor() != 0 {
		t.Errorf("Cursor() = %d after shrinking result, want 0", v.Cursor())
	}

	v.SetCursor(-3)
	if v.Cursor() != 0 {
		t.Errorf("SetCursor(-3) = %d, want 0", v.Cursor())
	}
}

func TestSideBySide_CursorMarker(t *testing.T) {
	v := NewSideBySide(plainTheme())
	v.SetResult(sampleResult())
	v.SetCursor(3)

	rows := v.Rows()
	if !strings.HasPrefix(rows[3], cursorGlyph) {
		t.Errorf("cursor row should start with %q: %q", cursorGlyph, rows[3])
	}
	if strings.HasPrefix(rows[0], cursorGlyph) {
		t.Errorf("non-cursor row has the cursor glyph: %q", rows[0])
	}
}

func TestMovedGutters(t *testing.T) {
	r := diff.NewResult([]diff.Entry{
		{State: diff.Moved, Left: ln(1, "a"), Right: ln(5, "a")},
		{State: diff.Moved, Left: ln(2, "b"), Right: ln(6, "b")},
		{State: diff.Moved, Left: ln(3, "c"), Right: ln(7, "c")},
		{State: diff.Unchanged, Left: ln(4, "d"), Right: ln(1, "d")},
		{State: diff.Moved, Left: ln(5, "e"), Right: ln(9, "e")},
		{State: diff.Moved, Left: ln(6, "f"), Right: ln(2, "f")},
	})

	got := movedGutters(r)
	want := []string{
		gutterMovedStart,
		gutterMovedMiddle,
		gutterMovedEnd,
		"",
		gutterMovedSingle,
		gutterMovedSingle,
	}
	if len(got) != len(want) {
		t.Fatalf("movedGutters() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("gutter[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if movedGutters(nil) != nil {
		t.Error("movedGutters(nil) should be nil")
	}
}

func TestSideBySide_MovedRowsShowConnector(t *testing.T) {
	v := NewSideBySide(plainTheme())
	v.SetWidth(80)
	v.SetResult(diff.NewResult([]diff.Entry{
		{State: diff.Moved, Left: ln(1, "a"), Right: ln(2, "a")},
		{State: diff.Unchanged, Left: ln(2, "b"), Right: ln(1, "b")},
	}))

	rows := v.Rows()
	if !strings.Contains(rows[0], "↔ a") {
		t.Errorf("moved row should carry the moved marker: %q", rows[0])
	}
	if !strings.Contains(rows[0], " "+gutterMovedSingle+" ") {
		t.Errorf("moved row should draw the connector in the gutter: %q", rows[0])
	}
}

func TestIntralineSegments(t *testing.T) {
	v := NewSideBySide(plainTheme())

	left, right := v.intralineSegments("[10:00:00] start", "[11:30:00] start")

	join := func(segs []segment) (string, bool) {
		var b strings.Builder
		highlighted := false
		for _, s := range segs {
			b.WriteString(s.text)
			highlighted = highlighted || s.highlight
		}
		return b.String(), highlighted
	}

	l, lh := join(left)
	r, rh := join(right)
	if l != "[10:00:00] start" {
		t.Errorf("left segments = %q", l)
	}
	if r != "[11:30:00] start" {
		t.Errorf("right segments = %q", r)
	}
	if !lh || !rh {
		t.Error("both sides should carry a highlighted run")
	}
	for _, s := range left {
		if s.highlight && strings.Contains(s.text, "start") {
			t.Errorf("shared text highlighted: %q", s.text)
		}
	}
}

func TestSideBySide_IntralineOnlyForDifferingText(t *testing.T) {
	v := NewSideBySide(plainTheme())
	v.SetWidth(80)
	v.SetResult(diff.NewResult([]diff.Entry{
		{State: diff.Unchanged, Left: ln(1, "10:00 up"), Right: ln(1, "11:00 up")},
	}))

	rows := v.Rows()
	if !strings.Contains(rows[0], "10:00 up") || !strings.Contains(rows[0], "11:00 up") {
		t.Errorf("intra-line rendering lost text: %q", rows[0])
	}

	v.SetIntraline(false)
	if v.Intraline() {
		t.Error("Intraline() should be false")
	}
	if got := v.Rows()[0]; lipgloss.Width(got) != 80 {
		t.Errorf("row width = %d, want 80", lipgloss.Width(got))
	}
}

func TestRenderSegments_Fits(t *testing.T) {
	v := NewSideBySide(plainTheme())
	row := lipgloss.NewStyle()

	tests := []struct {
		name  string
		segs  []segment
		width int
		want  string
	}{
		{"pads", []segment{{text: "ab"}}, 5, "ab   "},
		{"exact", []segment{{text: "abcde"}}, 5, "abcde"},
		{"cut", []segment{{text: "abcdefgh"}}, 5, "abcd…"},
		{"cut across runs", []segment{{text: "abc"}, {text: "defg", highlight: true}}, 5, "abcd…"},
		{"exact with more text", []segment{{text: "abcde"}, {text: "f"}}, 5, "abcd…"},
		{"trailing empty run", []segment{{text: "abcde"}, {text: ""}}, 5, "abcde"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := v.renderSegments(tc.segs, row, tc.width)
			if got != tc.want {
				t.Errorf("renderSegments() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSideBySide_View(t *testing.T) {
	v := NewSideBySide(plainTheme())

	if got := v.View(); !strings.Contains(got, "No comparison yet") {
		t.Errorf("View() without result = %q", got)
	}

	v.SetResult(diff.NewResult(nil))
	if got := v.View(); !strings.Contains(got, "Both inputs are empty") {
		t.Errorf("View() with empty result = %q", got)
	}

	v.SetTitles("a.log", "")
	v.SetResult(sampleResult())
	got := v.View()
	if !strings.Contains(got, "a.log") || !strings.Contains(got, "(right)") {
		t.Errorf("View() header missing titles: %q", got)
	}
	if n := strings.Count(got, "\n"); n != 6 {
		t.Errorf("View() has %d newlines, want 6", n)
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/jeranaias/chronoschism/internal/diff"
	"github.com/jeranaias/chronoschism/internal/ui/styles"
	"github.com/jeranaias/chronoschism/internal/util"
)

// =============================================================================
// SIDE BY SIDE
// =============================================================================

// Gutter glyphs drawn between the panels. Moved runs get a bracket so the
// eye can follow a block that changed position.
const (
	gutterPlain       = "│"
	gutterMovedSingle = "↔"
	gutterMovedStart  = "╭"
	gutterMovedMiddle = "│"
	gutterMovedEnd    = "╰"
	cursorGlyph       = "›"
)

// minNumberWidth keeps short files from getting a one-digit number column.
const minNumberWidth = 3

// SideBySide renders an alignment as two row-aligned panels. Both panels
// share one row per entry, so a single viewport scrolls them together.
type SideBySide struct {
	theme  *styles.Theme
	result *diff.Result

	leftTitle  string
	rightTitle string

	width       int
	lineNumbers bool
	intraline   bool
	cursor      int

	gutters []string
	dmp     *diffmatchpatch.DiffMatchPatch
}

// NewSideBySide creates an empty side-by-side view.
func NewSideBySide(theme *styles.Theme) *SideBySide {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return &SideBySide{
		theme:       theme,
		width:       80,
		lineNumbers: true,
		intraline:   true,
		dmp:         dmp,
	}
}

// SetResult replaces the alignment shown. The cursor is clamped to the new
// row count.
func (s *SideBySide) SetResult(r *diff.Result) {
	s.result = r
	s.gutters = movedGutters(r)
	s.SetCursor(s.cursor)
}

// Result returns the alignment shown, or nil.
func (s *SideBySide) Result() *diff.Result {
	return s.result
}

// SetTitles sets the panel headings, usually the file paths.
func (s *SideBySide) SetTitles(left, right string) {
	s.leftTitle = left
	s.rightTitle = right
}

// SetWidth sets the total rendering width in cells.
func (s *SideBySide) SetWidth(width int) {
	s.width = width
}

// SetLineNumbers toggles the line number column.
func (s *SideBySide) SetLineNumbers(on bool) {
	s.lineNumbers = on
}

// LineNumbers reports whether line numbers are shown.
func (s *SideBySide) LineNumbers() bool {
	return s.lineNumbers
}

// SetIntraline toggles highlighting of the text that differs between two
// linked lines.
func (s *SideBySide) SetIntraline(on bool) {
	s.intraline = on
}

// Intraline reports whether intra-line highlighting is on.
func (s *SideBySide) Intraline() bool {
	return s.intraline
}

// Len returns the number of rows.
func (s *SideBySide) Len() int {
	if s.result == nil {
		return 0
	}
	return len(s.result.Entries)
}

// =============================================================================
// CURSOR & NAVIGATION
// =============================================================================

// Cursor returns the highlighted row.
func (s *SideBySide) Cursor() int {
	return s.cursor
}

// SetCursor moves the cursor, clamping it to the available rows.
func (s *SideBySide) SetCursor(row int) {
	if row >= s.Len() {
		row = s.Len() - 1
	}
	if row < 0 {
		row = 0
	}
	s.cursor = row
}

func (s *SideBySide) changed(row int) bool {
	return s.result.Entries[row].State != diff.Unchanged
}

// NextChange moves the cursor to the first row of the next run of changed
// rows. It returns false and leaves the cursor alone when there is none.
func (s *SideBySide) NextChange() bool {
	n := s.Len()
	i := s.cursor
	for i < n && s.changed(i) {
		i++
	}
	for i < n && !s.changed(i) {
		i++
	}
	if i >= n {
		return false
	}
	s.cursor = i
	return true
}

// PrevChange moves the cursor to the first row of the previous run of
// changed rows.
func (s *SideBySide) PrevChange() bool {
	i := s.cursor - 1
	for i >= 0 && !s.changed(i) {
		i--
	}
	if i < 0 {
		return false
	}
	for i > 0 && s.changed(i-1) {
		i--
	}
	s.cursor = i
	return true
}

// =============================================================================
// RENDERING
// =============================================================================

// panelWidth returns the width of one panel: the total minus the cursor
// column and the three-cell gutter, split in two.
func (s *SideBySide) panelWidth() int {
	w := (s.width - 1 - 3) / 2
	if w < 8 {
		return 8
	}
	return w
}

// numberWidth returns the width of the line number column, excluding its
// trailing space.
func (s *SideBySide) numberWidth() int {
	if !s.lineNumbers || s.result == nil {
		return 0
	}
	largest := 0
	for _, e := range s.result.Entries {
		for _, l := range []*diff.Line{e.Left, e.Right} {
			if l != nil && l.Number > largest {
				largest = l.Number
			}
		}
	}
	w := len(strconv.Itoa(largest))
	if w < minNumberWidth {
		return minNumberWidth
	}
	return w
}

// Header renders the panel titles aligned over their panels.
func (s *SideBySide) Header() string {
	pw := s.panelWidth()
	left := s.theme.PanelTitle.Render(util.FitWidth(titleOr(s.leftTitle, "left"), pw))
	right := s.theme.PanelTitle.Render(util.FitWidth(titleOr(s.rightTitle, "right"), pw))
	return " " + left + "   " + right
}

func titleOr(title, fallback string) string {
	if title == "" {
		return "(" + fallback + ")"
	}
	return title
}

// Rows renders one string per entry.
func (s *SideBySide) Rows() []string {
	if s.result == nil {
		return nil
	}
	pw := s.panelWidth()
	nw := s.numberWidth()

	rows := make([]string, len(s.result.Entries))
	for i, e := range s.result.Entries {
		rows[i] = s.renderRow(i, e, pw, nw)
	}
	return rows
}

// View renders the header and every row. The interactive app feeds Rows
// into a viewport instead.
func (s *SideBySide) View() string {
	if s.result == nil {
		return s.theme.Filler.Italic(true).Render("No comparison yet")
	}
	if s.result.IsEmpty() {
		return s.theme.Filler.Italic(true).Render("Both inputs are empty")
	}
	return s.Header() + "\n" + strings.Join(s.Rows(), "\n")
}

func (s *SideBySide) renderRow(i int, e diff.Entry, pw, nw int) string {
	cursor := " "
	if i == s.cursor {
		cursor = s.theme.Cursor.Render(cursorGlyph)
	}

	var leftSegs, rightSegs []segment
	if s.intraline && e.Left != nil && e.Right != nil && e.Left.Text != e.Right.Text {
		leftSegs, rightSegs = s.intralineSegments(e.Left.Text, e.Right.Text)
	}

	gutter := s.theme.Separator.Render(gutterPlain)
	if g := s.gutters[i]; g != "" {
		gutter = s.theme.Marker(diff.Moved).Render(g)
	}

	return cursor +
		s.renderCell(e.State, e.Left, leftSegs, pw, nw) +
		" " + gutter + " " +
		s.renderCell(e.State, e.Right, rightSegs, pw, nw)
}

// renderCell renders one panel of a row. A nil line leaves the cell blank
// apart from the marker so both panels keep the same number of rows.
func (s *SideBySide) renderCell(state diff.State, line *diff.Line, segs []segment, pw, nw int) string {
	var b strings.Builder
	used := 0

	if nw > 0 {
		num := strings.Repeat(" ", nw)
		if line != nil {
			num = fmt.Sprintf("%*d", nw, line.Number)
		}
		b.WriteString(s.theme.LineNumber.Render(num))
		b.WriteString(" ")
		used += nw + 1
	}

	b.WriteString(s.theme.Marker(state).Render(state.Prefix()))
	used += 2

	textWidth := pw - used
	if textWidth <= 0 {
		return b.String()
	}

	row := s.theme.Row(state)
	if line == nil {
		b.WriteString(s.theme.Filler.Render(strings.Repeat(" ", textWidth)))
		return b.String()
	}
	if segs == nil {
		segs = []segment{{text: util.ExpandTabs(line.Text)}}
	}
	b.WriteString(s.renderSegments(segs, row, textWidth))
	return b.String()
}

// =============================================================================
// INTRA-LINE HIGHLIGHTING
// =============================================================================

// segment is a run of text within one cell; highlight marks text that only
// exists on this side of a linked pair.
type segment struct {
	text      string
	highlight bool
}

// intralineSegments splits two linked lines into runs. Linked lines share
// their normalized key, so what differs is the content the pattern removed.
func (s *SideBySide) intralineSegments(left, right string) ([]segment, []segment) {
	diffs := s.dmp.DiffMain(util.ExpandTabs(left), util.ExpandTabs(right), false)
	diffs = s.dmp.DiffCleanupSemantic(diffs)

	var l, r []segment
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			l = append(l, segment{text: d.Text})
			r = append(r, segment{text: d.Text})
		case diffmatchpatch.DiffDelete:
			l = append(l, segment{text: d.Text, highlight: true})
		case diffmatchpatch.DiffInsert:
			r = append(r, segment{text: d.Text, highlight: true})
		}
	}
	return l, r
}

// renderSegments styles segs and fits them into exactly width cells.
func (s *SideBySide) renderSegments(segs []segment, row lipgloss.Style, width int) string {
	var b strings.Builder
	remaining := width

	for i, seg := range segs {
		if remaining <= 0 {
			break
		}
		text := seg.text
		w := util.StringWidth(text)
		// Leave room for the ellipsis when more text follows.
		last := i == len(segs)-1
		cut := w > remaining || (w == remaining && !last && hasText(segs[i+1:]))
		if cut {
			text = util.TruncateWidth(text+" ", remaining)
			w = util.StringWidth(text)
		}
		remaining -= w
		style := row
		if seg.highlight {
			style = s.theme.Intraline
		}
		b.WriteString(style.Render(text))
		if cut {
			break
		}
	}

	if remaining > 0 {
		b.WriteString(row.Render(strings.Repeat(" ", remaining)))
	}
	return b.String()
}

func hasText(segs []segment) bool {
	for _, seg := range segs {
		if seg.text != "" {
			return true
		}
	}
	return false
}

// =============================================================================
// MOVED CONNECTORS
// =============================================================================

// movedGutters returns the gutter glyph for every entry. Entries outside a
// moved run get "".
func movedGutters(r *diff.Result) []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.Entries))
	continues := func(a, b diff.Entry) bool {
		return a.State == diff.Moved && b.State == diff.Moved &&
			b.Left.Number == a.Left.Number+1 &&
			b.Right.Number == a.Right.Number+1
	}

	for i, e := range r.Entries {
		if e.State != diff.Moved {
			continue
		}
		fromPrev := i > 0 && continues(r.Entries[i-1], e)
		toNext := i+1 < len(r.Entries) && continues(e, r.Entries[i+1])
		switch {
		case fromPrev && toNext:
			out[i] = gutterMovedMiddle
		case fromPrev:
			out[i] = gutterMovedEnd
		case toNext:
			out[i] = gutterMovedStart
		default:
			out[i] = gutterMovedSingle
		}
	}
	return out
}

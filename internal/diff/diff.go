// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff aligns two sequences of log lines.
package diff

import (
	"fmt"
	"strings"
)

// =============================================================================
// ENTRY STATE
// =============================================================================

// State classifies one alignment entry.
type State int

const (
	// Unchanged lines appear on both sides in the same relative order
	Unchanged State = iota
	// Added lines only exist on the right side
	Added
	// Deleted lines only exist on the left side
	Deleted
	// Moved lines exist on both sides but left their original position
	Moved
)

// String returns the string representation of a state.
func (s State) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	case Moved:
		return "moved"
	default:
		return "unknown"
	}
}

// Prefix returns the two-column marker used in per-panel text.
func (s State) Prefix() string {
	switch s {
	case Added:
		return "+ "
	case Deleted:
		return "- "
	case Moved:
		return "↔ "
	default:
		return "  "
	}
}

// MarshalText lets State serialize by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// =============================================================================
// LINE
// =============================================================================

// Line is one line of an input sequence.
type Line struct {
	Number int    `json:"number"` // 1-based position in its sequence
	Text   string `json:"text"`   // Original content, used for display
	Key    string `json:"-"`      // Normalized content, used for matching
}

// NewLines pairs original lines with their normalized form.
// Both slices must have the same length; normalization never adds or
// removes lines.
func NewLines(original, normalized []string) ([]Line, error) {
	if len(original) != len(normalized) {
		return nil, fmt.Errorf("line count mismatch: %d original, %d normalized", len(original), len(normalized))
	}
	lines := make([]Line, len(original))
	for i := range original {
		lines[i] = Line{Number: i + 1, Text: original[i], Key: normalized[i]}
	}
	return lines, nil
}

// LinesFromStrings builds lines whose match key is their own text.
func LinesFromStrings(texts []string) []Line {
	lines := make([]Line, len(texts))
	for i, text := range texts {
		lines[i] = Line{Number: i + 1, Text: text, Key: text}
	}
	return lines
}

// =============================================================================
// ENTRY
// =============================================================================

// Entry is one row of an alignment.
//
// Added entries carry only Right, Deleted entries only Left, Unchanged and
// Moved entries carry both.
type Entry struct {
	State State `json:"state"`
	Left  *Line `json:"left,omitempty"`
	Right *Line `json:"right,omitempty"`
}

// =============================================================================
// STATS
// =============================================================================

// Stats holds the per-state entry counts of a result.
type Stats struct {
	Unchanged int `json:"unchanged"`
	Added     int `json:"added"`
	Deleted   int `json:"deleted"`
	Moved     int `json:"moved"`
}

// Total returns the number of entries counted.
func (s Stats) Total() int {
	return s.Unchanged + s.Added + s.Deleted + s.Moved
}

// TotalChanges returns the number of entries that are not unchanged.
func (s Stats) TotalChanges() int {
	return s.Added + s.Deleted + s.Moved
}

func (s *Stats) count(state State) {
	switch state {
	case Unchanged:
		s.Unchanged++
	case Added:
		s.Added++
	case Deleted:
		s.Deleted++
	case Moved:
		s.Moved++
	}
}

// =============================================================================
// RESULT
// =============================================================================

// Result is a complete alignment of two sequences.
type Result struct {
	Entries []Entry `json:"entries"`
	Stats   Stats   `json:"stats"`
}

// NewResult builds a result and derives its statistics from the entries.
func NewResult(entries []Entry) *Result {
	r := &Result{Entries: entries}
	for _, e := range entries {
		r.Stats.count(e.State)
	}
	return r
}

// IsEmpty reports whether the result has no entries.
func (r *Result) IsEmpty() bool {
	return len(r.Entries) == 0
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	if r.Stats.TotalChanges() == 0 {
		return fmt.Sprintf("Identical (%d lines)", r.Stats.Unchanged)
	}

	parts := []string{"Changed"}
	if r.Stats.Added > 0 {
		parts = append(parts, fmt.Sprintf("+%d", r.Stats.Added))
	}
	if r.Stats.Deleted > 0 {
		parts = append(parts, fmt.Sprintf("-%d", r.Stats.Deleted))
	}
	if r.Stats.Moved > 0 {
		parts = append(parts, fmt.Sprintf("~%d", r.Stats.Moved))
	}
	parts = append(parts, fmt.Sprintf("=%d", r.Stats.Unchanged))
	return strings.Join(parts, " ")
}

// =============================================================================
// MOVED BLOCKS
// =============================================================================

// MovedBlock is a run of moved lines that stayed contiguous on both sides.
// Bounds are inclusive 1-based line numbers.
type MovedBlock struct {
	SourceStart      int `json:"source_start"`
	SourceEnd        int `json:"source_end"`
	DestinationStart int `json:"destination_start"`
	DestinationEnd   int `json:"destination_end"`
}

// Len returns the number of lines in the block.
func (b MovedBlock) Len() int {
	return b.SourceEnd - b.SourceStart + 1
}

// MovedBlocks groups consecutive moved entries whose left and right line
// numbers both advance by one. Entries themselves stay per-line; blocks are a
// view for drawing one connector per run.
func (r *Result) MovedBlocks() []MovedBlock {
	var blocks []MovedBlock
	var current *MovedBlock

	for _, e := range r.Entries {
		if e.State != Moved {
			current = nil
			continue
		}
		if current != nil &&
			e.Left.Number == current.SourceEnd+1 &&
			e.Right.Number == current.DestinationEnd+1 {
			current.SourceEnd++
			current.DestinationEnd++
			continue
		}
		blocks = append(blocks, MovedBlock{
			SourceStart:      e.Left.Number,
			SourceEnd:        e.Left.Number,
			DestinationStart: e.Right.Number,
			DestinationEnd:   e.Right.Number,
		})
		current = &blocks[len(blocks)-1]
	}

	return blocks
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine aligns two line sequences. Implementations must be total: every
// pair of inputs, including empty ones, yields a valid result.
type Engine interface {
	Align(left, right []Line) *Result
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{Unchanged, "unchanged"},
		{Added, "added"},
		{Deleted, "deleted"},
		{Moved, "moved"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.state.String())
	}
}

func TestState_Prefix(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{Unchanged, "  "},
		{Added, "+ "},
		{Deleted, "- "},
		{Moved, "↔ "},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.state.Prefix())
	}
}

func TestNewLines(t *testing.T) {
	lines, err := NewLines([]string{"[1] a", "[2] b"}, []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, []Line{
		{Number: 1, Text: "[1] a", Key: "a"},
		{Number: 2, Text: "[2] b", Key: "b"},
	}, lines)
}

func TestNewLines_LengthMismatch(t *testing.T) {
	_, err := NewLines([]string{"a", "b"}, []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestStats_Totals(t *testing.T) {
	s := Stats{Unchanged: 4, Added: 1, Deleted: 2, Moved: 3}

	assert.Equal(t, 10, s.Total())
	assert.Equal(t, 6, s.TotalChanges())
}

func TestResult_Summary(t *testing.T) {
	assert.Equal(t, "Identical (3 lines)", align([]string{"a", "b", "c"}, []string{"a", "b", "c"}).Summary())
	assert.Equal(t, "Changed +1 =2", align([]string{"a", "c"}, []string{"a", "b", "c"}).Summary())
	assert.Equal(t, "Changed -1 ~1 =1", align([]string{"a", "b", "x"}, []string{"b", "a"}).Summary())
}

func TestResult_MovedBlocks(t *testing.T) {
	r := align([]string{"a", "b", "c", "d", "e"}, []string{"d", "e", "a", "b", "c"})

	require.Equal(t, Stats{Unchanged: 3, Moved: 2}, r.Stats)
	assert.Equal(t, []MovedBlock{
		{SourceStart: 4, SourceEnd: 5, DestinationStart: 1, DestinationEnd: 2},
	}, r.MovedBlocks())
	assert.Equal(t, 2, r.MovedBlocks()[0].Len())
}

func TestResult_MovedBlocksSplitOnGap(t *testing.T) {
	r := NewResult([]Entry{
		{State: Moved, Left: &Line{Number: 1}, Right: &Line{Number: 7}},
		{State: Moved, Left: &Line{Number: 2}, Right: &Line{Number: 9}},
		{State: Unchanged, Left: &Line{Number: 3}, Right: &Line{Number: 1}},
		{State: Moved, Left: &Line{Number: 4}, Right: &Line{Number: 10}},
	})

	assert.Equal(t, []MovedBlock{
		{SourceStart: 1, SourceEnd: 1, DestinationStart: 7, DestinationEnd: 7},
		{SourceStart: 2, SourceEnd: 2, DestinationStart: 9, DestinationEnd: 9},
		{SourceStart: 4, SourceEnd: 4, DestinationStart: 10, DestinationEnd: 10},
	}, r.MovedBlocks())
}

func TestFormatSide(t *testing.T) {
	entries := []Entry{
		{State: Unchanged, Left: &Line{Number: 1, Text: "alpha"}, Right: &Line{Number: 1, Text: "alpha"}},
		{State: Added, Right: &Line{Number: 2, Text: "beta"}},
	}

	assert.Equal(t, "  alpha\r\n+ ", FormatSide(entries, LeftSide, "\r\n"))
	assert.Equal(t, "  alpha\r\n+ beta", FormatSide(entries, RightSide, "\r\n"))
}

func TestFormatSide_MovedAndDeleted(t *testing.T) {
	r := align([]string{"a", "b", "gone"}, []string{"b", "a"})

	assert.Equal(t, "↔ a\n  b\n- gone", FormatSide(r.Entries, LeftSide, "\n"))
	assert.Equal(t, "↔ a\n  b\n- ", FormatSide(r.Entries, RightSide, "\n"))
}

func TestResult_JSON(t *testing.T) {
	r := align([]string{"a"}, []string{"a", "b"})

	data, err := json.Marshal(r)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"entries": [
			{"state": "unchanged", "left": {"number": 1, "text": "a"}, "right": {"number": 1, "text": "a"}},
			{"state": "added", "right": {"number": 2, "text": "b"}}
		],
		"stats": {"unchanged": 1, "added": 1, "deleted": 0, "moved": 0}
	}`, string(data))
}

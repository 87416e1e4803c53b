// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// row is a compact view of an entry for assertions.
type row struct {
	State State
	Left  int // 0 when absent
	Right int // 0 when absent
	Text  string
}

func rows(r *Result) []row {
	out := make([]row, len(r.Entries))
	for i, e := range r.Entries {
		out[i].State = e.State
		if e.Left != nil {
			out[i].Left = e.Left.Number
			out[i].Text = e.Left.Text
		}
		if e.Right != nil {
			out[i].Right = e.Right.Number
			if out[i].Text == "" {
				out[i].Text = e.Right.Text
			}
		}
	}
	return out
}

func align(left, right []string) *Result {
	return NewHeckelEngine().Align(LinesFromStrings(left), LinesFromStrings(right))
}

// requireInvariants checks the structural guarantees every result must meet.
func requireInvariants(t *testing.T, left, right []Line, r *Result) {
	t.Helper()

	require.Equal(t, len(r.Entries), r.Stats.Total(), "counts must sum to entry count")

	leftRefs, rightRefs := 0, 0
	lastLeft, lastRight := 0, 0
	for n, e := range r.Entries {
		switch e.State {
		case Added:
			require.Nil(t, e.Left, "entry %d: added carries no left line", n)
			require.NotNil(t, e.Right, "entry %d: added carries a right line", n)
		case Deleted:
			require.NotNil(t, e.Left, "entry %d: deleted carries a left line", n)
			require.Nil(t, e.Right, "entry %d: deleted carries no right line", n)
		case Unchanged, Moved:
			require.NotNil(t, e.Left, "entry %d: %s carries a left line", n, e.State)
			require.NotNil(t, e.Right, "entry %d: %s carries a right line", n, e.State)
			require.Equal(t, e.Left.Key, e.Right.Key, "entry %d: paired lines must match", n)
		}

		if e.Left != nil {
			leftRefs++
			require.Greater(t, e.Left.Number, lastLeft, "entry %d: left numbers must increase", n)
			lastLeft = e.Left.Number
		}
		if e.Right != nil {
			rightRefs++
			if e.State != Moved {
				require.Greater(t, e.Right.Number, lastRight, "entry %d: right numbers must increase", n)
				lastRight = e.Right.Number
			}
		}
	}

	require.Equal(t, len(left), leftRefs, "every left line referenced once")
	require.Equal(t, len(right), rightRefs, "every right line referenced once")
}

func TestAlign_BothEmpty(t *testing.T) {
	r := align(nil, nil)

	assert.True(t, r.IsEmpty())
	assert.Equal(t, Stats{}, r.Stats)
}

func TestAlign_OneSideEmpty(t *testing.T) {
	r := align(nil, []string{"a", "b"})
	assert.Equal(t, []row{
		{State: Added, Right: 1, Text: "a"},
		{State: Added, Right: 2, Text: "b"},
	}, rows(r))

	r = align([]string{"a", "b"}, nil)
	assert.Equal(t, []row{
		{State: Deleted, Left: 1, Text: "a"},
		{State: Deleted, Left: 2, Text: "b"},
	}, rows(r))
}

func TestAlign_Identity(t *testing.T) {
	lines := []string{"a", "b", "a", "c", "b", "b"}

	r := align(lines, lines)

	require.Len(t, r.Entries, len(lines))
	for i, e := range r.Entries {
		assert.Equal(t, Unchanged, e.State)
		assert.Equal(t, i+1, e.Left.Number)
		assert.Equal(t, i+1, e.Right.Number)
	}
	assert.Equal(t, 0, r.Stats.TotalChanges())
}

func TestAlign_PureAddition(t *testing.T) {
	r := align([]string{"a", "c"}, []string{"a", "b", "c"})

	assert.Equal(t, []row{
		{State: Unchanged, Left: 1, Right: 1, Text: "a"},
		{State: Added, Right: 2, Text: "b"},
		{State: Unchanged, Left: 2, Right: 3, Text: "c"},
	}, rows(r))
	assert.Equal(t, Stats{Unchanged: 2, Added: 1}, r.Stats)
}

func TestAlign_PureDeletion(t *testing.T) {
	r := align([]string{"a", "b", "c"}, []string{"a", "c"})

	assert.Equal(t, []row{
		{State: Unchanged, Left: 1, Right: 1, Text: "a"},
		{State: Deleted, Left: 2, Text: "b"},
		{State: Unchanged, Left: 3, Right: 2, Text: "c"},
	}, rows(r))
	assert.Equal(t, Stats{Unchanged: 2, Deleted: 1}, r.Stats)
}

func TestAlign_MoveDetection(t *testing.T) {
	r := align([]string{"a", "b", "c"}, []string{"c", "a", "b"})

	assert.Equal(t, []row{
		{State: Unchanged, Left: 1, Right: 2, Text: "a"},
		{State: Unchanged, Left: 2, Right: 3, Text: "b"},
		{State: Moved, Left: 3, Right: 1, Text: "c"},
	}, rows(r))
	assert.Equal(t, 1, r.Stats.Moved)
	assert.Equal(t, r.Stats.Moved, r.Stats.TotalChanges(), "a permutation produces no add/delete pairs")
}

func TestAlign_Swap(t *testing.T) {
	r := align([]string{"a", "b"}, []string{"b", "a"})

	assert.Equal(t, []row{
		{State: Moved, Left: 1, Right: 2, Text: "a"},
		{State: Unchanged, Left: 2, Right: 1, Text: "b"},
	}, rows(r))
}

func TestAlign_MovedBetweenChanges(t *testing.T) {
	r := align([]string{"a", "b", "c", "d"}, []string{"a", "x", "c", "d", "b"})

	assert.Equal(t, []row{
		{State: Unchanged, Left: 1, Right: 1, Text: "a"},
		{State: Moved, Left: 2, Right: 5, Text: "b"},
		{State: Added, Right: 2, Text: "x"},
		{State: Unchanged, Left: 3, Right: 3, Text: "c"},
		{State: Unchanged, Left: 4, Right: 4, Text: "d"},
	}, rows(r))
}

// The residual pass links duplicates to the first free right position; these
// cases pin that policy down.
func TestAlign_ResidualTieBreak(t *testing.T) {
	tests := []struct {
		name  string
		left  []string
		right []string
		want  []row
	}{
		{
			name:  "all identical, left longer",
			left:  []string{"x", "x", "x"},
			right: []string{"x", "x"},
			want: []row{
				{State: Unchanged, Left: 1, Right: 1, Text: "x"},
				{State: Unchanged, Left: 2, Right: 2, Text: "x"},
				{State: Deleted, Left: 3, Text: "x"},
			},
		},
		{
			name:  "all identical, right longer",
			left:  []string{"x", "x"},
			right: []string{"x", "x", "x"},
			want: []row{
				{State: Unchanged, Left: 1, Right: 1, Text: "x"},
				{State: Unchanged, Left: 2, Right: 2, Text: "x"},
				{State: Added, Right: 3, Text: "x"},
			},
		},
		{
			name:  "duplicate claimed by expansion first",
			left:  []string{"x", "a", "x"},
			right: []string{"a", "x", "x"},
			want: []row{
				{State: Moved, Left: 1, Right: 3, Text: "x"},
				{State: Unchanged, Left: 2, Right: 1, Text: "a"},
				{State: Unchanged, Left: 3, Right: 2, Text: "x"},
			},
		},
		{
			name:  "duplicates around an insertion",
			left:  []string{"x", "x"},
			right: []string{"x", "y", "x"},
			want: []row{
				{State: Unchanged, Left: 1, Right: 1, Text: "x"},
				{State: Added, Right: 2, Text: "y"},
				{State: Unchanged, Left: 2, Right: 3, Text: "x"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := LinesFromStrings(tt.left), LinesFromStrings(tt.right)
			r := NewHeckelEngine().Align(left, right)

			assert.Equal(t, tt.want, rows(r))
			requireInvariants(t, left, right, r)
		})
	}
}

func TestAlign_AnchorsExpandThroughDuplicates(t *testing.T) {
	left := []string{"start", "tick", "tick", "tick", "stop"}
	right := []string{"boot", "start", "tick", "tick", "tick", "stop"}

	r := align(left, right)

	assert.Equal(t, Stats{Unchanged: 5, Added: 1}, r.Stats)
	assert.Equal(t, Added, r.Entries[0].State)
	assert.Equal(t, "boot", r.Entries[0].Right.Text)
}

func TestAlign_MatchesOnKeyShowsText(t *testing.T) {
	left, err := NewLines(
		[]string{"[10:00] start", "[10:01] work", "[10:02] stop"},
		[]string{"start", "work", "stop"},
	)
	require.NoError(t, err)
	right, err := NewLines(
		[]string{"[11:00] start", "[11:05] stop"},
		[]string{"start", "stop"},
	)
	require.NoError(t, err)

	r := NewHeckelEngine().Align(left, right)

	assert.Equal(t, []row{
		{State: Unchanged, Left: 1, Right: 1, Text: "[10:00] start"},
		{State: Deleted, Left: 2, Text: "[10:01] work"},
		{State: Unchanged, Left: 3, Right: 2, Text: "[10:02] stop"},
	}, rows(r))
	assert.Equal(t, "[11:05] stop", r.Entries[2].Right.Text)
}

func TestAlign_Deterministic(t *testing.T) {
	left := []string{"a", "b", "a", "c", "d", "b", "e"}
	right := []string{"b", "a", "e", "c", "a", "d", "b"}

	first := rows(align(left, right))
	for i := 0; i < 20; i++ {
		require.Equal(t, first, rows(align(left, right)))
	}
}

func TestAlign_InvariantsHoldOnRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabets := []int{1, 2, 3, 5, 12}

	for round := 0; round < 300; round++ {
		size := alphabets[round%len(alphabets)]
		left := randomLines(rng, rng.Intn(25), size)
		right := randomLines(rng, rng.Intn(25), size)

		t.Run(fmt.Sprintf("round_%d", round), func(t *testing.T) {
			l, r := LinesFromStrings(left), LinesFromStrings(right)
			requireInvariants(t, l, r, NewHeckelEngine().Align(l, r))
		})
	}
}

func TestAlign_PermutationOfUniqueLinesOnlyMoves(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(15)
		left := make([]string, n)
		for i := range left {
			left[i] = fmt.Sprintf("line-%d", i)
		}
		right := append([]string(nil), left...)
		rng.Shuffle(len(right), func(i, j int) { right[i], right[j] = right[j], right[i] })

		r := align(left, right)

		require.Equal(t, 0, r.Stats.Added, "round %d", round)
		require.Equal(t, 0, r.Stats.Deleted, "round %d", round)
		require.Equal(t, n, r.Stats.Unchanged+r.Stats.Moved, "round %d", round)
	}
}

func randomLines(rng *rand.Rand, n, alphabet int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = string(rune('a' + rng.Intn(alphabet)))
	}
	return lines
}

func BenchmarkAlign_RepetitiveLog(b *testing.B) {
	left := make([]string, 5000)
	right := make([]string, 5000)
	for i := range left {
		left[i] = fmt.Sprintf("worker %d heartbeat", i%7)
		right[i] = fmt.Sprintf("worker %d heartbeat", (i+3)%7)
	}
	l, r := LinesFromStrings(left), LinesFromStrings(right)
	engine := NewHeckelEngine()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Align(l, r)
	}
}

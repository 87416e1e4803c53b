// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import "sort"

// unlinked marks a position without a partner on the other side.
const unlinked = -1

// HeckelEngine aligns sequences with a four-pass variant of Heckel's
// algorithm followed by an emission walk.
//
// Residual tie-break: a line that could not be anchored is linked to the
// first still-unlinked right position with the same key, scanning left lines
// top to bottom. This is a policy choice among several valid alignments; it
// is deterministic but not a minimum edit script.
//
// Passes 1-3 and emission are near-linear. Pass 4 walks each key's right
// positions at most once, so inputs with many identical lines stay bounded
// by the total line count.
type HeckelEngine struct{}

// NewHeckelEngine creates a Heckel alignment engine.
func NewHeckelEngine() *HeckelEngine {
	return &HeckelEngine{}
}

// symbol is one frequency table entry.
type symbol struct {
	leftCount  int
	rightCount int
	leftIndex  int   // last left position seen (the only one when leftCount == 1)
	rightIndex []int // right positions in ascending order
	cursor     int   // rightIndex entries before cursor are already linked
}

// alignment holds the link tables shared by the passes.
type alignment struct {
	left      []Line
	right     []Line
	leftLink  []int
	rightLink []int
	table     map[string]*symbol
}

// Align aligns left against right. It never fails.
func (e *HeckelEngine) Align(left, right []Line) *Result {
	a := &alignment{
		left:      left,
		right:     right,
		leftLink:  filled(len(left), unlinked),
		rightLink: filled(len(right), unlinked),
		table:     make(map[string]*symbol, len(left)+len(right)),
	}

	a.countFrequencies()
	a.linkUniqueAnchors()
	a.expandNeighbours()
	a.linkResidual()

	return NewResult(a.emit())
}

// countFrequencies is pass 1.
func (a *alignment) countFrequencies() {
	for i, line := range a.left {
		sym := a.symbolFor(line.Key)
		sym.leftCount++
		sym.leftIndex = i
	}
	for j, line := range a.right {
		sym := a.symbolFor(line.Key)
		sym.rightCount++
		sym.rightIndex = append(sym.rightIndex, j)
	}
}

func (a *alignment) symbolFor(key string) *symbol {
	sym, ok := a.table[key]
	if !ok {
		sym = &symbol{}
		a.table[key] = sym
	}
	return sym
}

// linkUniqueAnchors is pass 2: keys occurring exactly once on each side.
func (a *alignment) linkUniqueAnchors() {
	for _, sym := range a.table {
		if sym.leftCount == 1 && sym.rightCount == 1 {
			a.link(sym.leftIndex, sym.rightIndex[0])
		}
	}
}

// expandNeighbours is pass 3: grow links into runs of equal neighbours,
// forward and backward, until nothing changes.
func (a *alignment) expandNeighbours() {
	for changed := true; changed; {
		changed = false

		for i := 0; i < len(a.left)-1; i++ {
			j := a.leftLink[i]
			if j == unlinked || j+1 >= len(a.right) {
				continue
			}
			if a.canLink(i+1, j+1) {
				a.link(i+1, j+1)
				changed = true
			}
		}

		for i := len(a.left) - 1; i > 0; i-- {
			j := a.leftLink[i]
			if j == unlinked || j == 0 {
				continue
			}
			if a.canLink(i-1, j-1) {
				a.link(i-1, j-1)
				changed = true
			}
		}
	}
}

// linkResidual is pass 4: first available right position, in left order.
func (a *alignment) linkResidual() {
	for i, line := range a.left {
		if a.leftLink[i] != unlinked {
			continue
		}
		sym := a.table[line.Key]
		if sym.rightCount == 0 {
			continue
		}
		for sym.cursor < len(sym.rightIndex) && a.rightLink[sym.rightIndex[sym.cursor]] != unlinked {
			sym.cursor++
		}
		if sym.cursor == len(sym.rightIndex) {
			continue
		}
		a.link(i, sym.rightIndex[sym.cursor])
		sym.cursor++
	}
}

func (a *alignment) canLink(i, j int) bool {
	return a.leftLink[i] == unlinked &&
		a.rightLink[j] == unlinked &&
		a.left[i].Key == a.right[j].Key
}

func (a *alignment) link(i, j int) {
	a.leftLink[i] = j
	a.rightLink[j] = i
}

// =============================================================================
// EMISSION
// =============================================================================

// emit walks both sides once. The longest chain of links that preserves
// order on both sides is the uninterrupted run and becomes Unchanged; every
// other link is Moved and is emitted at its left position. At each step a
// left line that is not part of the run goes first, then unlinked right
// lines, then the next run pair.
func (a *alignment) emit() []Entry {
	inRun := a.orderPreservingRun()

	entries := make([]Entry, 0, max(len(a.left), len(a.right)))
	i, j := 0, 0

	for i < len(a.left) || j < len(a.right) {
		// Right halves of moved pairs were emitted with their left half.
		if j < len(a.right) && a.rightLink[j] != unlinked && !inRun[a.rightLink[j]] {
			j++
			continue
		}

		if i < len(a.left) && !inRun[i] {
			if k := a.leftLink[i]; k != unlinked {
				entries = append(entries, Entry{State: Moved, Left: &a.left[i], Right: &a.right[k]})
			} else {
				entries = append(entries, Entry{State: Deleted, Left: &a.left[i]})
			}
			i++
			continue
		}

		if j < len(a.right) && a.rightLink[j] == unlinked {
			entries = append(entries, Entry{State: Added, Right: &a.right[j]})
			j++
			continue
		}

		// Both cursors sit on the same run pair: earlier run pairs are
		// consumed on both sides and the run never crosses itself.
		entries = append(entries, Entry{State: Unchanged, Left: &a.left[i], Right: &a.right[j]})
		i++
		j++
	}

	return entries
}

// orderPreservingRun marks the left positions of the longest chain of links
// whose right positions strictly increase. Among chains of equal length the
// one ending at the smallest right position wins, which keeps the choice
// deterministic.
func (a *alignment) orderPreservingRun() []bool {
	inRun := make([]bool, len(a.left))

	var linked []int // left positions with a link, ascending
	for i, j := range a.leftLink {
		if j != unlinked {
			linked = append(linked, i)
		}
	}
	if len(linked) == 0 {
		return inRun
	}

	// Patience sorting over the right positions.
	tails := make([]int, 0, len(linked)) // index into linked
	prev := filled(len(linked), unlinked)
	for n, i := range linked {
		j := a.leftLink[i]
		pos := sort.Search(len(tails), func(t int) bool {
			return a.leftLink[linked[tails[t]]] >= j
		})
		if pos > 0 {
			prev[n] = tails[pos-1]
		}
		if pos == len(tails) {
			tails = append(tails, n)
		} else {
			tails[pos] = n
		}
	}

	for n := tails[len(tails)-1]; n != unlinked; n = prev[n] {
		inRun[linked[n]] = true
	}
	return inRun
}

func filled(n, value int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = value
	}
	return s
}

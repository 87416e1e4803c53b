// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff aligns two sequences of log lines.
//
// The alignment is a variant of Heckel's algorithm: lines unique to both
// sides anchor the alignment, anchors grow into runs through their
// neighbours, and the remaining duplicates are matched first-come
// first-served. Unlike LCS diffing this detects lines that moved.
//
// # Key Types
//
//   - State: classification of an entry (unchanged, added, deleted, moved)
//   - Line: one line with its 1-based number, original text and match key
//   - Entry: one row of the alignment with optional left and right lines
//   - Result: ordered entries plus Stats
//   - Engine: the alignment capability; HeckelEngine implements it
//
// # Usage
//
// Align two already normalized sequences:
//
//	left := diff.NewLines(rawLeft, normalizedLeft)
//	right := diff.NewLines(rawRight, normalizedRight)
//	result := diff.NewHeckelEngine().Align(left, right)
//	fmt.Println(result.Summary())
//
// Lines are matched on Key and displayed with Text, so timestamps removed
// during normalization never register as changes while still being shown.
package diff

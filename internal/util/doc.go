// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared across chronoschism.
//
// # Key Functions
//
// Files:
//   - AtomicWriteFile: crash-safe replace with fsync and rename
//
// Terminal text:
//   - ExpandTabs: tab stops to spaces
//   - StringWidth, TruncateWidth, FitWidth: cell-width aware sizing
//
// # Usage
//
//	cell := util.FitWidth(util.ExpandTabs(line), 40)
//	err := util.AtomicWriteFile(path, data, 0600)
package util

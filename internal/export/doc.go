// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders finished comparisons as shareable reports.
//
// # Key Types
//
//   - Exporter: renders a comparison to bytes in one format
//   - Options: metadata and theme switches shared by all exporters
//   - Report: the JSON document layout
//
// # Supported Formats
//
//   - JSON: machine-readable, every entry plus moved blocks
//   - Markdown: summary plus a fenced diff listing
//   - HTML: self-contained side-by-side table with embedded CSS
//
// # Usage
//
//	exporter, err := export.ForFormat("html", export.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	data, err := exporter.Export(cmp)
package export

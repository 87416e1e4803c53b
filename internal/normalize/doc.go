// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package normalize removes timestamp noise from log lines before they are
// compared.
//
// A user-supplied regular expression is compiled once per distinct pattern
// text and every match is deleted from every line. An empty pattern means no
// filtering and costs nothing.
//
// # Key Types
//
//   - Normalizer: the normalization capability
//   - PatternNormalizer: Normalizer backed by a Cache
//   - Cache: compiled patterns keyed by exact pattern text
//   - Compiler, Matcher: the regex engine boundary (RE2 or regexp2)
//   - PatternError: a pattern failed to compile
//   - StripError: a match failed while stripping (regexp2 timeouts)
//
// # Usage
//
//	n := normalize.New(normalize.NewCache(normalize.RE2Compiler{}))
//	out, err := n.Normalize(lines, `\[\d{2}:\d{2}:\d{2}\] `)
//	var perr *normalize.PatternError
//	if errors.As(err, &perr) {
//	    // show perr.Reason next to the input field
//	}
//
// The cache is safe for concurrent use; a pattern seen for the first time by
// several goroutines is compiled once.
package normalize

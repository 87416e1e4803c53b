// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

import "fmt"

// PatternError reports a pattern that failed to compile.
type PatternError struct {
	Pattern string // Offending pattern text, verbatim
	Reason  string // Human-readable syntax error
	Err     error  // Underlying compiler error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid timestamp pattern '%s': %s", e.Pattern, e.Reason)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// StripError reports a failure while removing matches, such as a regexp2
// match timeout. No partial output accompanies it.
type StripError struct {
	Pattern string
	Line    int // 1-based line that failed
	Err     error
}

func (e *StripError) Error() string {
	return fmt.Sprintf("failed to strip timestamps with '%s' at line %d: %v", e.Pattern, e.Line, e.Err)
}

func (e *StripError) Unwrap() error {
	return e.Err
}

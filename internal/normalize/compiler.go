// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// =============================================================================
// COMPILER BOUNDARY
// =============================================================================

// Matcher is a compiled pattern.
type Matcher interface {
	// Strip deletes every non-overlapping match from line.
	Strip(line string) (string, error)
}

// Compiler turns pattern text into a Matcher.
type Compiler interface {
	Compile(pattern string) (Matcher, error)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(pattern string) (Matcher, error)

// Compile calls f(pattern).
func (f CompilerFunc) Compile(pattern string) (Matcher, error) {
	return f(pattern)
}

// Pattern syntaxes accepted by CompilerFor.
const (
	SyntaxRE2        = "re2"
	SyntaxDotNet     = "dotnet"
	SyntaxECMAScript = "ecmascript"
)

// Syntaxes lists the accepted syntax names.
var Syntaxes = []string{SyntaxRE2, SyntaxDotNet, SyntaxECMAScript}

// CompilerFor returns the compiler for a syntax name. The timeout only
// applies to the backtracking syntaxes.
func CompilerFor(syntax string, timeout time.Duration) (Compiler, error) {
	switch strings.ToLower(syntax) {
	case "", SyntaxRE2:
		return RE2Compiler{}, nil
	case SyntaxDotNet:
		return Regexp2Compiler{Options: regexp2.None, Timeout: timeout}, nil
	case SyntaxECMAScript:
		return Regexp2Compiler{Options: regexp2.ECMAScript, Timeout: timeout}, nil
	default:
		return nil, fmt.Errorf("unknown pattern syntax %q (want one of %s)", syntax, strings.Join(Syntaxes, ", "))
	}
}

// =============================================================================
// RE2 (STANDARD LIBRARY)
// =============================================================================

// RE2Compiler compiles patterns with the standard regexp package. Matching is
// linear time, so it needs no timeout.
type RE2Compiler struct{}

// Compile implements Compiler.
func (RE2Compiler) Compile(pattern string) (Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return re2Matcher{re: re}, nil
}

type re2Matcher struct {
	re *regexp.Regexp
}

func (m re2Matcher) Strip(line string) (string, error) {
	return m.re.ReplaceAllLiteralString(line, ""), nil
}

// =============================================================================
// REGEXP2 (.NET / ECMASCRIPT)
// =============================================================================

// Regexp2Compiler compiles patterns with regexp2, which supports look-around
// and backreferences. Backtracking can blow up, so every match is bounded by
// Timeout when it is positive.
type Regexp2Compiler struct {
	Options regexp2.RegexOptions
	Timeout time.Duration
}

// Compile implements Compiler.
func (c Regexp2Compiler) Compile(pattern string) (Matcher, error) {
	re, err := regexp2.Compile(pattern, c.Options)
	if err != nil {
		return nil, err
	}
	if c.Timeout > 0 {
		re.MatchTimeout = c.Timeout
	}
	return regexp2Matcher{re: re}, nil
}

type regexp2Matcher struct {
	re *regexp2.Regexp
}

func (m regexp2Matcher) Strip(line string) (string, error) {
	return m.re.Replace(line, "", -1, -1)
}

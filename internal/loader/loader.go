// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package loader reads log files into lines for comparison.
//
// Files may be UTF-8 (with or without a BOM) or UTF-16 with a BOM; they are
// decoded to UTF-8 before splitting. Both "\n" and "\r\n" terminate a line,
// and a final terminator does not produce an empty trailing line.
package loader

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultMaxSize is the largest file ReadLines accepts.
const DefaultMaxSize = 256 << 20

// ErrTooLarge is returned for files above the size limit.
var ErrTooLarge = errors.New("file too large")

// Document is a decoded log file.
type Document struct {
	Path   string
	Lines  []string
	Digest Digest // blake3 of the raw bytes
}

// Digest identifies file content.
type Digest [32]byte

// String returns the hex form of the first 8 bytes.
func (d Digest) String() string {
	return hex.EncodeToString(d[:8])
}

// IsZero reports whether d is unset.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// LoadError reports a file that could not be read or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ReadLines loads path with DefaultMaxSize.
func ReadLines(path string) (*Document, error) {
	return ReadLinesLimit(path, DefaultMaxSize)
}

// ReadLinesLimit loads path, refusing files larger than maxSize bytes. A
// non-positive maxSize disables the check.
func ReadLinesLimit(path string, maxSize int64) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Path: path, Err: errors.New("is a directory")}
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, info.Size(), maxSize)}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	doc, err := Parse(raw)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	doc.Path = path
	return doc, nil
}

// Parse decodes raw file content into a Document without a path.
func Parse(raw []byte) (*Document, error) {
	text, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return &Document{
		Lines:  SplitLines(text),
		Digest: blake3.Sum256(raw),
	}, nil
}

// Decode converts raw bytes to UTF-8 text. A UTF-16 BOM selects UTF-16
// decoding; a UTF-8 BOM is dropped. Invalid UTF-8 becomes U+FFFD.
func Decode(raw []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	return string(out), nil
}

// SplitLines splits text on "\n", trimming one trailing "\r" from each
// line. Empty text has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

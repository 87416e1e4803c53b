// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

// Normalizer rewrites lines so that pattern matches no longer take part in
// comparisons.
type Normalizer interface {
	// Normalize returns lines with every match of pattern removed. The
	// output has the same length and order as the input. An empty pattern
	// returns lines unchanged. Failures are all-or-nothing.
	Normalize(lines []string, pattern string) ([]string, error)
}

// PatternNormalizer is the regex-backed Normalizer.
type PatternNormalizer struct {
	cache *Cache
}

// New creates a normalizer over cache. A nil cache gets a fresh RE2 cache.
func New(cache *Cache) *PatternNormalizer {
	if cache == nil {
		cache = NewCache(nil)
	}
	return &PatternNormalizer{cache: cache}
}

// Cache returns the compiled-pattern cache in use.
func (n *PatternNormalizer) Cache() *Cache {
	return n.cache
}

// Normalize implements Normalizer. With an empty pattern the input slice
// itself is returned and nothing is compiled.
func (n *PatternNormalizer) Normalize(lines []string, pattern string) ([]string, error) {
	if pattern == "" {
		return lines, nil
	}

	m, err := n.cache.Get(pattern)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		stripped, err := m.Strip(line)
		if err != nil {
			return nil, &StripError{Pattern: pattern, Line: i + 1, Err: err}
		}
		out[i] = stripped
	}
	return out, nil
}

// Validate reports whether pattern compiles, warming the cache on success.
// The empty pattern is always valid.
func (n *PatternNormalizer) Validate(pattern string) error {
	if pattern == "" {
		return nil
	}
	_, err := n.cache.Get(pattern)
	return err
}

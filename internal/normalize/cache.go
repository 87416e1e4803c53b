// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Cache holds compiled patterns keyed by their exact source text. Entries
// live as long as the cache; the pattern set is small and user-driven.
//
// Readers of a cached pattern only take the read lock. The first use of a
// pattern compiles it once even when several goroutines ask at the same
// time, and the entry becomes visible only after compilation finished.
// Failed compilations are not cached.
type Cache struct {
	compiler Compiler

	mu      sync.RWMutex
	entries map[string]Matcher

	group    singleflight.Group
	compiles atomic.Int64
}

// NewCache creates an empty cache using compiler. A nil compiler means
// RE2Compiler.
func NewCache(compiler Compiler) *Cache {
	if compiler == nil {
		compiler = RE2Compiler{}
	}
	return &Cache{
		compiler: compiler,
		entries:  make(map[string]Matcher),
	}
}

// Get returns the compiled form of pattern, compiling it on first use.
func (c *Cache) Get(pattern string) (Matcher, error) {
	if m, ok := c.lookup(pattern); ok {
		return m, nil
	}

	v, err, _ := c.group.Do(pattern, func() (interface{}, error) {
		// Another caller may have finished while we queued.
		if m, ok := c.lookup(pattern); ok {
			return m, nil
		}

		c.compiles.Add(1)
		m, err := c.compiler.Compile(pattern)
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Reason: err.Error(), Err: err}
		}

		c.mu.Lock()
		c.entries[pattern] = m
		c.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Matcher), nil
}

func (c *Cache) lookup(pattern string) (Matcher, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.entries[pattern]
	return m, ok
}

// Len returns the number of cached patterns.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Compiles returns how many compilations the cache has attempted,
// including failed ones.
func (c *Cache) Compiles() int64 {
	return c.compiles.Load()
}

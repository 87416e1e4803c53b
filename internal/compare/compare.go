// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compare runs the load, normalize and align pipeline for a pair of
// log files and remembers the last good comparison for the viewer.
package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/chronoschism/internal/diff"
	"github.com/jeranaias/chronoschism/internal/loader"
	"github.com/jeranaias/chronoschism/internal/logging"
	"github.com/jeranaias/chronoschism/internal/normalize"
	"github.com/jeranaias/chronoschism/internal/settings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrStale is returned when a newer comparison finished first.
	ErrStale = errors.New("comparison superseded by a newer one")
	// ErrMissingPath is returned when either side has no file.
	ErrMissingPath = errors.New("both files must be selected")
)

// =============================================================================
// TYPES
// =============================================================================

// Request names the two files and the timestamp pattern to strip.
type Request struct {
	LeftPath  string
	RightPath string
	Pattern   string
}

// Comparison is a finished alignment together with its inputs.
type Comparison struct {
	Request
	Left, Right *loader.Document
	Result      *diff.Result
	Duration    time.Duration
	CompletedAt time.Time
	// Reused is set when the inputs matched the previous comparison and the
	// alignment was not recomputed.
	Reused bool

	normGen uint64
}

// Loader reads a file into a document.
type Loader interface {
	Load(path string) (*loader.Document, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (*loader.Document, error)

// Load calls f(path).
func (f LoaderFunc) Load(path string) (*loader.Document, error) {
	return f(path)
}

// Recorder receives every successful comparison.
type Recorder interface {
	Record(ctx context.Context, c *Comparison) error
}

// Options configures a Comparer. Zero fields get working defaults.
type Options struct {
	Loader      Loader
	Normalizer  normalize.Normalizer
	Engine      diff.Engine
	Recorder    Recorder
	HistorySize int
	History     []string // seed, newest first
	Logger      *slog.Logger
	Now         func() time.Time
}

// =============================================================================
// COMPARER
// =============================================================================

// Comparer composes loader, normalizer and engine. It is safe for
// concurrent use; when comparisons overlap, the most recently started one
// wins and older ones return ErrStale.
type Comparer struct {
	loader     Loader
	normalizer normalize.Normalizer
	engine     diff.Engine
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time

	started atomic.Uint64

	mu        sync.Mutex
	committed uint64
	last      *Comparison
	pattern   string
	history   *settings.History
	normGen   uint64 // bumped by SetNormalizer
}

// New creates a Comparer.
func New(opts Options) *Comparer {
	c := &Comparer{
		loader:     opts.Loader,
		normalizer: opts.Normalizer,
		engine:     opts.Engine,
		recorder:   opts.Recorder,
		logger:     opts.Logger,
		now:        opts.Now,
		history:    settings.NewHistory(opts.HistorySize, opts.History...),
	}
	if c.loader == nil {
		c.loader = LoaderFunc(loader.ReadLines)
	}
	if c.normalizer == nil {
		c.normalizer = normalize.New(nil)
	}
	if c.engine == nil {
		c.engine = diff.NewHeckelEngine()
	}
	if c.logger == nil {
		c.logger = logging.Logger()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Compare loads both files, strips req.Pattern from every line and aligns
// the results. ctx is checked between stages so an abandoned comparison
// stops early; the alignment itself always runs to completion.
//
// On failure the last good comparison is kept.
func (c *Comparer) Compare(ctx context.Context, req Request) (*Comparison, error) {
	seq := c.started.Add(1)
	start := c.now()

	if req.LeftPath == "" || req.RightPath == "" {
		return nil, ErrMissingPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	left, err := c.loader.Load(req.LeftPath)
	if err != nil {
		return nil, err
	}
	right, err := c.loader.Load(req.RightPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if prev := c.reusable(req, left, right); prev != nil {
		cmp := *prev
		cmp.Request = req
		cmp.Reused = true
		cmp.Duration = c.now().Sub(start)
		cmp.CompletedAt = c.now()
		return c.commit(ctx, seq, &cmp)
	}

	c.mu.Lock()
	n, gen := c.normalizer, c.normGen
	c.mu.Unlock()

	leftLines, rightLines, err := c.normalizePair(n, left.Lines, right.Lines, req.Pattern)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := c.engine.Align(leftLines, rightLines)

	cmp := &Comparison{
		Request:     req,
		Left:        left,
		Right:       right,
		Result:      result,
		Duration:    c.now().Sub(start),
		CompletedAt: c.now(),
		normGen:     gen,
	}
	return c.commit(ctx, seq, cmp)
}

// normalizePair strips both sides. Either both succeed or neither is used.
func (c *Comparer) normalizePair(n normalize.Normalizer, left, right []string, pattern string) ([]diff.Line, []diff.Line, error) {
	leftKeys, err := n.Normalize(left, pattern)
	if err != nil {
		c.patternFailed(pattern, err)
		return nil, nil, err
	}
	rightKeys, err := n.Normalize(right, pattern)
	if err != nil {
		c.patternFailed(pattern, err)
		return nil, nil, err
	}

	leftLines, err := diff.NewLines(left, leftKeys)
	if err != nil {
		return nil, nil, fmt.Errorf("left: %w", err)
	}
	rightLines, err := diff.NewLines(right, rightKeys)
	if err != nil {
		return nil, nil, fmt.Errorf("right: %w", err)
	}
	return leftLines, rightLines, nil
}

func (c *Comparer) patternFailed(pattern string, err error) {
	var perr *normalize.PatternError
	if errors.As(err, &perr) {
		logging.PatternInvalid(pattern, err)
		return
	}
	c.logger.Error("normalize_failed", "pattern", pattern, "error", err)
}

func (c *Comparer) reusable(req Request, left, right *loader.Document) *Comparison {
	c.mu.Lock()
	defer c.mu.Unlock()
	last := c.last
	if last == nil || last.normGen != c.normGen || last.Request != req {
		return nil
	}
	if last.Left.Digest != left.Digest || last.Right.Digest != right.Digest {
		return nil
	}
	return last
}

func (c *Comparer) commit(ctx context.Context, seq uint64, cmp *Comparison) (*Comparison, error) {
	c.mu.Lock()
	if seq < c.committed {
		c.mu.Unlock()
		return nil, ErrStale
	}
	c.committed = seq
	c.last = cmp
	c.pattern = cmp.Pattern
	c.history.Push(cmp.Pattern)
	c.mu.Unlock()

	logging.CompareComplete(cmp.LeftPath, cmp.RightPath, cmp.Pattern,
		cmp.Result.Stats.TotalChanges(), cmp.Result.Stats.Total(), cmp.Duration, cmp.Reused)

	if c.recorder != nil && !cmp.Reused {
		if err := c.recorder.Record(ctx, cmp); err != nil {
			c.logger.Warn("record_failed", "error", err)
		}
	}
	return cmp, nil
}

// Last returns the most recent successful comparison, or nil.
func (c *Comparer) Last() *Comparison {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// SetNormalizer replaces the normalizer used by later comparisons, for
// example after the pattern syntax changed. Comparisons made with an earlier
// normalizer are not reused.
func (c *Comparer) SetNormalizer(n normalize.Normalizer) {
	if n == nil {
		n = normalize.New(nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.normalizer = n
	c.normGen++
}

// SetPattern validates pattern and makes it current. A valid non-empty
// pattern goes to the front of the history. An invalid pattern is returned
// as a *normalize.PatternError and changes nothing.
func (c *Comparer) SetPattern(pattern string) error {
	c.mu.Lock()
	n := c.normalizer
	c.mu.Unlock()
	if _, err := n.Normalize([]string{}, pattern); err != nil {
		c.patternFailed(pattern, err)
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pattern = pattern
	c.history.Push(pattern)
	return nil
}

// Pattern returns the current pattern.
func (c *Comparer) Pattern() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pattern
}

// History returns recently used patterns, newest first.
func (c *Comparer) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Items()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/chronoschism/internal/compare"
	"github.com/jeranaias/chronoschism/internal/diff"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("history store closed")

// =============================================================================
// RECORD TYPE
// =============================================================================

// Record is one stored comparison.
type Record struct {
	ID          string        `json:"id"`
	LeftPath    string        `json:"left_path"`
	RightPath   string        `json:"right_path"`
	Pattern     string        `json:"pattern"`
	LeftDigest  string        `json:"left_digest"`
	RightDigest string        `json:"right_digest"`
	Stats       diff.Stats    `json:"stats"`
	Duration    time.Duration `json:"duration"`
	CreatedAt   time.Time     `json:"created_at"`
}

// =============================================================================
// HISTORY STORE
// =============================================================================

// HistoryStore keeps past comparisons in SQLite. It implements
// compare.Recorder.
type HistoryStore struct {
	mu sync.RWMutex
	db *sql.DB
	// MaxRecords caps the table; older rows are pruned on insert. 0 keeps
	// everything.
	MaxRecords int
}

var _ compare.Recorder = (*HistoryStore)(nil)

// OpenHistory opens (creating if needed) the database at path. ":memory:"
// gives a private in-memory database.
func OpenHistory(path string) (*HistoryStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps an in-memory
	// database alive across queries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &HistoryStore{db: db, MaxRecords: 1000}, nil
}

// Record stores a finished comparison.
func (s *HistoryStore) Record(ctx context.Context, c *compare.Comparison) error {
	_, err := s.Insert(ctx, Record{
		LeftPath:    c.LeftPath,
		RightPath:   c.RightPath,
		Pattern:     c.Pattern,
		LeftDigest:  c.Left.Digest.String(),
		RightDigest: c.Right.Digest.String(),
		Stats:       c.Result.Stats,
		Duration:    c.Duration,
		CreatedAt:   c.CompletedAt,
	})
	return err
}

// Insert stores r, assigning an ID and timestamp when missing, and returns
// the stored ID.
func (s *HistoryStore) Insert(ctx context.Context, r Record) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return "", ErrClosed
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comparisons (id, left_path, right_path, pattern, left_digest, right_digest,
			unchanged, added, deleted, moved, duration_us, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.LeftPath, r.RightPath, r.Pattern, r.LeftDigest, r.RightDigest,
		r.Stats.Unchanged, r.Stats.Added, r.Stats.Deleted, r.Stats.Moved,
		r.Duration.Microseconds(), r.CreatedAt.UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert comparison: %w", err)
	}

	if s.MaxRecords > 0 {
		if _, err := s.db.ExecContext(ctx, `
			DELETE FROM comparisons WHERE id NOT IN (
				SELECT id FROM comparisons ORDER BY created_at DESC LIMIT ?
			)`, s.MaxRecords); err != nil {
			return "", fmt.Errorf("prune comparisons: %w", err)
		}
	}
	return r.ID, nil
}

// Recent returns up to limit records, newest first.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, left_path, right_path, pattern, left_digest, right_digest,
			unchanged, added, deleted, moved, duration_us, created_at
		FROM comparisons ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query comparisons: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var durationUs, createdAt int64
		if err := rows.Scan(&r.ID, &r.LeftPath, &r.RightPath, &r.Pattern, &r.LeftDigest, &r.RightDigest,
			&r.Stats.Unchanged, &r.Stats.Added, &r.Stats.Deleted, &r.Stats.Moved,
			&durationUs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan comparison: %w", err)
		}
		r.Duration = time.Duration(durationUs) * time.Microsecond
		r.CreatedAt = time.Unix(0, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the number of stored records.
func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return 0, ErrClosed
	}
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comparisons").Scan(&n)
	return n, err
}

// Close closes the database. Further calls return ErrClosed.
func (s *HistoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

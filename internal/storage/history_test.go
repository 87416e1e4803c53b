// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chronoschism/internal/compare"
	"github.com/jeranaias/chronoschism/internal/diff"
	"github.com/jeranaias/chronoschism/internal/loader"
)

func openTemp(t *testing.T) *HistoryStore {
	t.Helper()
	s, err := OpenHistory(filepath.Join(t.TempDir(), "sub", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHistoryStore_InsertAndRecent(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := s.Insert(ctx, Record{
			LeftPath:  "a.log",
			RightPath: "b.log",
			Pattern:   `\d+`,
			Stats:     diff.Stats{Unchanged: i, Added: 1},
			Duration:  1500 * time.Microsecond,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 2, recent[0].Stats.Unchanged, "newest first")
	assert.Equal(t, 1, recent[1].Stats.Unchanged)
	assert.Equal(t, 1500*time.Microsecond, recent[0].Duration)
	assert.True(t, recent[0].CreatedAt.Equal(base.Add(2*time.Minute)))

	_, err = uuid.Parse(recent[0].ID)
	assert.NoError(t, err)
}

func TestHistoryStore_KeepsExplicitID(t *testing.T) {
	s := openTemp(t)
	id, err := s.Insert(context.Background(), Record{ID: "fixed", LeftPath: "l", RightPath: "r"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)
}

func TestHistoryStore_Prunes(t *testing.T) {
	s := openTemp(t)
	s.MaxRecords = 3
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		_, err := s.Insert(ctx, Record{LeftPath: "l", RightPath: "r", CreatedAt: base.Add(time.Duration(i) * time.Second)})
		require.NoError(t, err)
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestHistoryStore_RecordsComparisons(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	c := compare.New(compare.Options{
		Loader: compare.LoaderFunc(func(path string) (*loader.Document, error) {
			return loader.Parse([]byte(path + "\nshared\n"))
		}),
		Recorder: s,
	})

	_, err := c.Compare(ctx, compare.Request{LeftPath: "left", RightPath: "right"})
	require.NoError(t, err)

	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "left", recent[0].LeftPath)
	assert.Equal(t, diff.Stats{Unchanged: 1, Added: 1, Deleted: 1}, recent[0].Stats)
	assert.Len(t, recent[0].LeftDigest, 16)
	assert.NotEqual(t, recent[0].LeftDigest, recent[0].RightDigest)
}

func TestHistoryStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := OpenHistory(path)
	require.NoError(t, err)
	_, err = s.Insert(context.Background(), Record{LeftPath: "l", RightPath: "r"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenHistory(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestHistoryStore_Closed(t *testing.T) {
	s, err := OpenHistory(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Recent(context.Background(), 1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Insert(context.Background(), Record{})
	assert.ErrorIs(t, err, ErrClosed)
}

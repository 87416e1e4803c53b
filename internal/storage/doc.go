// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps a history of past comparisons in SQLite.
//
// # Key Types
//
//   - HistoryStore: SQLite-backed log of comparisons, implements compare.Recorder
//   - Record: one stored comparison (paths, pattern, digests, counts)
//
// # Usage
//
//	store, err := storage.OpenHistory(path)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	cmp := compare.New(compare.Options{Recorder: store})
//	recent, err := store.Recent(ctx, 10)
//
// # Storage Location
//
// The database lives at history.db in the config directory unless
// history.database_path says otherwise.
package storage

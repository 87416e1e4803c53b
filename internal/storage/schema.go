// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// SchemaVersion tracks the database schema version for migrations.
const SchemaVersion = 1

// Schema creates the comparison history tables.
const Schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS comparisons (
    id TEXT PRIMARY KEY,
    left_path TEXT NOT NULL,
    right_path TEXT NOT NULL,
    pattern TEXT NOT NULL,
    left_digest TEXT NOT NULL,
    right_digest TEXT NOT NULL,
    unchanged INTEGER NOT NULL,
    added INTEGER NOT NULL,
    deleted INTEGER NOT NULL,
    moved INTEGER NOT NULL,
    duration_us INTEGER NOT NULL,
    created_at INTEGER NOT NULL -- Unix nanoseconds
);

CREATE INDEX IF NOT EXISTS idx_comparisons_created_at ON comparisons(created_at);
`

// InitMetadata records the schema version on first use.
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
`

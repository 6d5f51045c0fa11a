// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *DB) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    organization TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'uncategorized',
    vote_count INTEGER NOT NULL DEFAULT 0 CHECK (vote_count >= 0),
    approved BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidate_approved_votes ON candidate(approved, vote_count);
CREATE UNIQUE INDEX IF NOT EXISTS uq_candidate_name_org ON candidate(name, organization);

-- Per-device key/value state (vote budgets)
CREATE TABLE IF NOT EXISTS device_kv (
    kv_key TEXT PRIMARY KEY,
    kv_value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections and schema creation.

# Connecting

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)

Two dialects are supported: "sqlite" (modernc.org/sqlite, the default) and
"postgres" (lib/pq). Queries elsewhere are written with ? placeholders and
passed through conn.Rebind before execution.

# Schema Creation

	if err := db.CreateSchema(ctx, conn); err != nil {
		return err
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - candidate: votable CEO records, approval flag, vote totals
  - device_kv: per-device key/value state, used for vote budgets

# Indexes

  - candidate.(approved, vote_count) for the leaderboard query
  - candidate.(name, organization) for duplicate and seed lookups
*/
package db

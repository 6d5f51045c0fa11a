// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package store persists candidates behind the CandidateStore interface:
// create, query, partial update and atomic vote increments. SQLStore runs on
// PostgreSQL or SQLite; MemoryStore backs tests.
package store

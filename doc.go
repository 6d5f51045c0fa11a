// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the AI CEO API server.

AI CEO is a satirical voting app: visitors chat with an "AI CEO", collect
generated corporate quotes, and spend a small per-device vote budget on which
real CEO it should replace. Nominations stay hidden until they collect enough
votes, and the leaderboard updates live.

# Starting the Server

	ADMIN_KEY_SALT=... SHARE_SLUG_SALT=... go run .

With Postgres and Redis:

	go run . -t postgres -d "postgres://..." -redis "redis://localhost:6379/0"

Without Redis, budgets live in the SQL database and live updates only reach
clients of this process.

# Architecture

  - store, kv: candidate documents and budget counters (SQL, Redis, memory)
  - budget: per-device vote budget with unlock refunds
  - voting: per-device vote state machine
  - moderation: submission screening and threshold promotion
  - leaderboard: live snapshot sync and fan-out
  - quotes, chatflow: quote generation and the onboarding chat
  - seed: built-in candidates and admin reset
  - handlers, router, middleware: HTTP surface
  - cliparse, logger: configuration and logging
*/
package main

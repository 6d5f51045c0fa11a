// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the AI CEO API.

# Services

Handlers share one Services bundle built by NewServices from the storage
backends and Config:

	svc := handlers.NewServices(handlers.Deps{
		Candidates: store.NewSQLStore(conn),
		KV:         kv.NewSQLStore(conn),
		Seeds:      entries,
	}, cfg)
	defer svc.Close()

Each handler is a struct constructed from the bundle:

  - CandidateHandler: list, fetch and nominate candidates
  - VotingHandler: cast a vote through the vote coordinator
  - BudgetHandler: per-device vote budget, unlocks and reset
  - LeaderboardHandler: snapshot and live WebSocket leaderboard
  - QuoteHandler: generate quotes and resolve share links
  - ChatHandler: the scripted onboarding conversation
  - AdminHandler: seeding, reset and manual moderation passes

# Devices

Budget and vote routes identify the caller with the X-Device-UUID header.
It must be a UUID; it is stored in canonical form.

# Vote Outcomes

	200 succeeded          vote recorded
	404                    unknown candidate
	409                    a vote from this device is still submitting
	429 budget_exhausted   body lists unlock actions
	503 failed             the vote stays consumed unless refunds are enabled

# Live Leaderboard

GET /leaderboard/live upgrades to a WebSocket and sends a
LeaderboardResponse for every snapshot. Slow clients skip to the newest
snapshot. The optional category query filters frames without re-querying.
*/
package handlers

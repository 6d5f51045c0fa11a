// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the AI CEO API.

	mux := router.NewRouter(svc, cfg, limiter)

# Endpoints

Health:

	GET /health

Candidates:

	GET  /candidates?approved=&category= - Query candidates
	GET  /candidates/{id}                - Single candidate
	POST /candidates                     - Nominate (rate limited)
	POST /candidates/{id}/votes          - Vote (rate limited, X-Device-UUID)

Leaderboard:

	GET /leaderboard?category=      - Last synced snapshot
	GET /leaderboard/live?category= - WebSocket push

Vote budget (X-Device-UUID):

	GET    /devices/budget        - Current budget
	POST   /devices/budget/unlock - Refund votes for share/copy_link/email_ceo
	DELETE /devices/budget        - Clear budget

Quotes and chat:

	GET  /quotes?goal=                 - Generate a quote
	GET  /quotes/{slug}                - Resolve a share link
	POST /chat/sessions                - Start a chat
	GET  /chat/sessions/{id}           - Current step
	POST /chat/sessions/{id}/actions   - Apply an action

Admin (requires X-Admin-Key):

	POST /admin/seed       - Insert missing seed candidates
	POST /admin/reset      - Hide everything, restore seeds
	POST /admin/moderation - Run a promotion pass

Mutating public routes share the per-client rate limiter when one is given.
*/
package router

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Candidate: a votable CEO/company pair with a vote count and approval flag

A Candidate is visible on the public leaderboard only when Approved is true.
VoteCount only ever grows.

# Request Types

  - SubmitCandidateRequest: name, organization, category
  - UnlockRequest: action (share, copy_link, email_ceo)
  - StartChatRequest: optional goal
  - ChatActionRequest: kind, target, goal, text

# Response Types

  - CandidateView: candidate plus rank and humanized vote count
  - CandidateListResponse, LeaderboardResponse
  - BudgetResponse: consumed, remaining, has_votes_left, cap
  - VoteResponse: coordinator state, budget, unlock options
  - QuoteResponse, ChatSessionResponse
  - SeedResponse, ModerationResponse
  - ErrorResponse: error, message

# Categories

	tech, finance, retail, media, energy, healthcare, automotive, uncategorized

NormalizeCategory maps the empty string to uncategorized.
*/
package models

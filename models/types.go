// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Candidate categories
const (
	CategoryTech          = "tech"
	CategoryFinance       = "finance"
	CategoryRetail        = "retail"
	CategoryMedia         = "media"
	CategoryEnergy        = "energy"
	CategoryHealthcare    = "healthcare"
	CategoryAutomotive    = "automotive"
	CategoryUncategorized = "uncategorized"
)

// Categories lists every accepted category tag in display order.
var Categories = []string{
	CategoryTech,
	CategoryFinance,
	CategoryRetail,
	CategoryMedia,
	CategoryEnergy,
	CategoryHealthcare,
	CategoryAutomotive,
	CategoryUncategorized,
}

// NormalizeCategory maps "" to uncategorized and reports whether the tag is known.
func NormalizeCategory(category string) (string, bool) {
	if category == "" {
		return CategoryUncategorized, true
	}
	for _, c := range Categories {
		if c == category {
			return c, true
		}
	}
	return category, false
}

// Domain types

type Candidate struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Organization string    `json:"organization"`
	Category     string    `json:"category"`
	VoteCount    int       `json:"vote_count"`
	Approved     bool      `json:"approved"`
	CreatedAt    time.Time `json:"created_at"`
}

// Request types

type SubmitCandidateRequest struct {
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Category     string `json:"category"`
}

type UnlockRequest struct {
	Action string `json:"action"`
}

type StartChatRequest struct {
	Goal string `json:"goal,omitempty"`
}

type ChatActionRequest struct {
	Kind   string `json:"kind"`
	Target string `json:"target,omitempty"`
	Goal   string `json:"goal,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Response types

type CandidateView struct {
	Candidate
	Rank         int    `json:"rank,omitempty"`
	VotesDisplay string `json:"votes_display"`
}

type CandidateListResponse struct {
	Candidates []CandidateView `json:"candidates"`
}

type SubmitCandidateResponse struct {
	Candidate Candidate `json:"candidate"`
	Message   string    `json:"message"`
}

type BudgetResponse struct {
	Consumed     int  `json:"consumed"`
	Remaining    int  `json:"remaining"`
	HasVotesLeft bool `json:"has_votes_left"`
	Cap          int  `json:"cap"`
}

type UnlockOption struct {
	Action string `json:"action"`
	Refund int    `json:"refund"`
}

type VoteResponse struct {
	State         string         `json:"state"`
	CandidateID   string         `json:"candidate_id"`
	Budget        BudgetResponse `json:"budget"`
	UnlockOptions []UnlockOption `json:"unlock_options,omitempty"`
	Message       string         `json:"message,omitempty"`
}

type LeaderboardResponse struct {
	Candidates []CandidateView `json:"candidates"`
	Category   string          `json:"category,omitempty"`
	SyncedAt   *time.Time      `json:"synced_at,omitempty"`
	Connected  bool            `json:"connected"`
}

type QuoteResponse struct {
	Text     string `json:"text"`
	Goal     string `json:"goal"`
	Slug     string `json:"slug"`
	ShareURL string `json:"share_url"`
}

type ChatOption struct {
	Label  string `json:"label"`
	Kind   string `json:"kind"`
	Target string `json:"target,omitempty"`
	Goal   string `json:"goal,omitempty"`
}

type ChatSessionResponse struct {
	SessionID string         `json:"session_id"`
	State     string         `json:"state"`
	Prompt    string         `json:"prompt"`
	Goal      string         `json:"goal,omitempty"`
	Quote     *QuoteResponse `json:"quote,omitempty"`
	Options   []ChatOption   `json:"options"`
}

type SeedResponse struct {
	Created    int `json:"created"`
	Skipped    int `json:"skipped"`
	Reapproved int `json:"reapproved,omitempty"`
}

type ModerationResponse struct {
	Promoted []string `json:"promoted"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

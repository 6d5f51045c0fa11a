// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/ai-ceo/cliparse"
	"github.com/danielhkuo/ai-ceo/handlers"
	"github.com/danielhkuo/ai-ceo/middleware"
)

// NewRouter wires every route. A nil limiter disables rate limiting.
func NewRouter(svc *handlers.Services, cfg cliparse.Config, limiter *middleware.RateLimiter) *http.ServeMux {
	mux := http.NewServeMux()

	candidateHandler := handlers.NewCandidateHandler(svc, cfg)
	votingHandler := handlers.NewVotingHandler(svc, cfg)
	budgetHandler := handlers.NewBudgetHandler(svc, cfg)
	leaderboardHandler := handlers.NewLeaderboardHandler(svc, cfg)
	quoteHandler := handlers.NewQuoteHandler(svc, cfg)
	chatHandler := handlers.NewChatHandler(svc, cfg)
	adminHandler := handlers.NewAdminHandler(svc, cfg)

	// Mutating public routes are rate limited per client
	limited := func(h http.HandlerFunc) http.HandlerFunc {
		h = middleware.WithLogging(h)
		if limiter == nil {
			return h
		}
		return limiter.Limit(h)
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Candidates
	mux.HandleFunc("GET /candidates", middleware.WithLogging(candidateHandler.List))
	mux.HandleFunc("GET /candidates/{id}", middleware.WithLogging(candidateHandler.Get))
	mux.HandleFunc("POST /candidates", limited(candidateHandler.Submit))
	mux.HandleFunc("POST /candidates/{id}/votes", limited(votingHandler.Vote))

	// Leaderboard
	mux.HandleFunc("GET /leaderboard", middleware.WithLogging(leaderboardHandler.Get))
	mux.HandleFunc("GET /leaderboard/live", middleware.WithLogging(leaderboardHandler.Live))

	// Vote budget (per device)
	mux.HandleFunc("GET /devices/budget", middleware.WithLogging(budgetHandler.Get))
	mux.HandleFunc("POST /devices/budget/unlock", limited(budgetHandler.Unlock))
	mux.HandleFunc("DELETE /devices/budget", limited(budgetHandler.Reset))

	// Quotes
	mux.HandleFunc("GET /quotes", middleware.WithLogging(quoteHandler.Generate))
	mux.HandleFunc("GET /quotes/{slug}", middleware.WithLogging(quoteHandler.Get))

	// Onboarding chat
	mux.HandleFunc("POST /chat/sessions", limited(chatHandler.Start))
	mux.HandleFunc("GET /chat/sessions/{id}", middleware.WithLogging(chatHandler.Get))
	mux.HandleFunc("POST /chat/sessions/{id}/actions", limited(chatHandler.Act))

	// Admin (X-Admin-Key)
	mux.HandleFunc("POST /admin/seed", middleware.WithLogging(adminHandler.RequireKey(adminHandler.Seed)))
	mux.HandleFunc("POST /admin/reset", middleware.WithLogging(adminHandler.RequireKey(adminHandler.Reset)))
	mux.HandleFunc("POST /admin/moderation", middleware.WithLogging(adminHandler.RequireKey(adminHandler.Moderate)))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ai-ceo API v1"))
	})

	return mux
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/google/uuid"

	"github.com/danielhkuo/ai-ceo/budget"
	"github.com/danielhkuo/ai-ceo/chatflow"
	"github.com/danielhkuo/ai-ceo/cliparse"
	"github.com/danielhkuo/ai-ceo/kv"
	"github.com/danielhkuo/ai-ceo/leaderboard"
	"github.com/danielhkuo/ai-ceo/models"
	"github.com/danielhkuo/ai-ceo/moderation"
	"github.com/danielhkuo/ai-ceo/quotes"
	"github.com/danielhkuo/ai-ceo/seed"
	"github.com/danielhkuo/ai-ceo/store"
	"github.com/danielhkuo/ai-ceo/voting"
)

// Services bundles the components the handlers drive.
type Services struct {
	Store       store.CandidateStore
	Budget      *budget.Tracker
	Votes       *voting.Coordinator
	Gate        *moderation.Gate
	Moderation  *moderation.Queue
	Leaderboard *leaderboard.Sync
	Quotes      *quotes.Generator
	Archive     *quotes.Archive
	Chat        *chatflow.Engine
	Sessions    *chatflow.SessionStore
	Seeder      *seed.Seeder
}

// Deps are the backends the services are built on.
type Deps struct {
	Candidates store.CandidateStore
	KV         kv.Store
	Feed       leaderboard.Feed
	Seeds      []seed.Entry
	// Rand drives quote generation. Nil seeds from the clock.
	Rand rand.Source
}

// NewServices assembles the components from cfg.
func NewServices(deps Deps, cfg cliparse.Config) *Services {
	if deps.Feed == nil {
		deps.Feed = leaderboard.NewLocalFeed()
	}

	live := leaderboard.NewSync(deps.Candidates, deps.Feed, cfg.ResyncInterval)
	gate := moderation.NewGate(deps.Candidates, nil)
	queue := moderation.NewQueue(gate, moderation.QueueConfig{
		Threshold: cfg.PromoteThreshold,
		Interval:  cfg.ModerationInterval,
		Publisher: live,
	})
	tracker := budget.NewTracker(deps.KV, cfg.VoteCap)
	gen := quotes.NewGenerator(cfg.ShareSlugSalt, deps.Rand)
	sessions := chatflow.NewSessionStore(chatflow.DefaultIdleTimeout)

	return &Services{
		Store:  deps.Candidates,
		Budget: tracker,
		Votes: voting.NewCoordinator(deps.Candidates, tracker, voting.Options{
			Cooldown:        cfg.VoteCooldown,
			RefundOnFailure: cfg.RefundOnFailure,
			Publisher:       live,
			Moderation:      queue,
		}),
		Gate:        gate,
		Moderation:  queue,
		Leaderboard: live,
		Quotes:      gen,
		Archive:     quotes.NewArchive(deps.KV),
		Chat:        chatflow.NewEngine(gen, sessions),
		Sessions:    sessions,
		Seeder:      seed.NewSeeder(deps.Candidates, deps.Seeds),
	}
}

// Close ends live subscriptions and pending vote cooldowns.
func (s *Services) Close() {
	s.Votes.Close()
	s.Leaderboard.Close()
}

const DeviceHeader = "X-Device-UUID"

var errMissingDevice = errors.New("X-Device-UUID header required")

// deviceID returns the request's device id in canonical form.
func deviceID(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get(DeviceHeader))
	if raw == "" {
		return "", errMissingDevice
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", errors.New("X-Device-UUID must be a UUID")
	}
	return id.String(), nil
}

func votesDisplay(n int) string {
	return humanize.Comma(int64(n)) + " " + english.PluralWord(n, "vote", "")
}

// toViews ranks an ordered list. Ranks are 1-based; rank 0 means unranked.
func toViews(candidates []models.Candidate, ranked bool) []models.CandidateView {
	views := make([]models.CandidateView, 0, len(candidates))
	for i, c := range candidates {
		v := models.CandidateView{Candidate: c, VotesDisplay: votesDisplay(c.VoteCount)}
		if ranked {
			v.Rank = i + 1
		}
		views = append(views, v)
	}
	return views
}

// categoryFilter validates a category query value. "" and "all" mean no filter.
func categoryFilter(raw string) (string, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return "", true
	}
	for _, c := range models.Categories {
		if c == raw {
			return c, true
		}
	}
	return "", false
}

func budgetResponse(st budget.Status, voteCap int) models.BudgetResponse {
	return models.BudgetResponse{
		Consumed:     st.Consumed,
		Remaining:    st.Remaining,
		HasVotesLeft: st.HasVotesLeft,
		Cap:          voteCap,
	}
}

func unlockOptions(opts []budget.UnlockOption) []models.UnlockOption {
	out := make([]models.UnlockOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, models.UnlockOption{Action: o.Action, Refund: o.Refund})
	}
	return out
}

func quoteResponse(q quotes.Quote) models.QuoteResponse {
	return models.QuoteResponse{
		Text:     q.Text,
		Goal:     q.Goal,
		Slug:     q.Slug,
		ShareURL: "/quotes/" + q.Slug,
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danielhkuo/ai-ceo/logger"
	"github.com/danielhkuo/ai-ceo/models"
	"github.com/danielhkuo/ai-ceo/store"
)

const DefaultResyncInterval = 30 * time.Second

// Snapshot is one full, ordered delivery of approved candidates.
type Snapshot struct {
	Candidates []models.Candidate
	At         time.Time
}

// Sync keeps a live ordered view of approved candidates and pushes it to subscribers.
type Sync struct {
	store  store.CandidateStore
	feed   Feed
	resync time.Duration

	// refreshMu orders refreshes so an older query result never replaces a newer one.
	refreshMu sync.Mutex

	mu        sync.Mutex
	subs      map[*Subscription]struct{}
	last      *Snapshot
	connected bool
	closed    bool
}

func NewSync(s store.CandidateStore, feed Feed, resync time.Duration) *Sync {
	if resync <= 0 {
		resync = DefaultResyncInterval
	}
	return &Sync{
		store:  s,
		feed:   feed,
		resync: resync,
		subs:   make(map[*Subscription]struct{}),
	}
}

// Run re-queries on every feed notification and on the resync interval until ctx ends.
func (s *Sync) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.resync)
	defer ticker.Stop()

	s.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.feed.Changes():
			s.Refresh(ctx)
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Publish announces a change to the candidate collection.
func (s *Sync) Publish(ctx context.Context) error {
	return s.feed.Publish(ctx)
}

// Refresh queries the store and delivers the result to every subscriber.
// On failure the last snapshot is kept and nothing is delivered.
func (s *Sync) Refresh(ctx context.Context) bool {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	candidates, err := s.store.Query(ctx, store.Query{Approved: store.Bool(true), ByVotes: true})
	if err != nil {
		s.mu.Lock()
		wasConnected := s.connected
		s.connected = false
		s.mu.Unlock()
		if wasConnected {
			logger.Warn("leaderboard disconnected, keeping last snapshot", zap.Error(err))
		} else {
			logger.Debug("leaderboard refresh failed", zap.Error(err))
		}
		return false
	}

	snap := Snapshot{Candidates: candidates, At: time.Now().UTC()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.connected = true
	s.last = &snap
	for sub := range s.subs {
		sub.offer(snap)
	}
	return true
}

// Subscribe registers a subscriber. The current snapshot, if any, is delivered first.
// The subscription ends on Close or when ctx is done.
func (s *Sync) Subscribe(ctx context.Context) *Subscription {
	sub := &Subscription{
		owner: s,
		ch:    make(chan Snapshot, 1),
		stop:  make(chan struct{}),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.stopOnce.Do(func() {
			close(sub.stop)
			close(sub.ch)
		})
		return sub
	}
	s.subs[sub] = struct{}{}
	last := s.last
	if last != nil {
		sub.offer(*last)
	}
	s.mu.Unlock()

	if last == nil {
		s.Refresh(ctx)
	}

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.stop:
		}
	}()

	logger.Debug("leaderboard subscriber added", zap.Int("subscribers", s.Subscribers()))
	return sub
}

// Latest returns the most recent successful snapshot.
func (s *Sync) Latest() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Snapshot{}, false
	}
	return *s.last, true
}

// Connected reports whether the last refresh succeeded.
func (s *Sync) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Sync) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close ends every subscription. Later Subscribe calls return closed subscriptions.
func (s *Sync) Close() {
	s.mu.Lock()
	s.closed = true
	subs := make([]*Subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

// Subscription is a latest-value stream of snapshots.
type Subscription struct {
	owner    *Sync
	ch       chan Snapshot
	stop     chan struct{}
	stopOnce sync.Once
}

// C yields snapshots. It is closed after Close.
func (sub *Subscription) C() <-chan Snapshot {
	return sub.ch
}

// Done is closed when the subscription ends.
func (sub *Subscription) Done() <-chan struct{} {
	return sub.stop
}

// Close unsubscribes. No snapshot is delivered after it returns.
func (sub *Subscription) Close() {
	sub.stopOnce.Do(func() {
		// Holding the sync lock excludes a concurrent offer.
		sub.owner.mu.Lock()
		delete(sub.owner.subs, sub)
		close(sub.stop)
		close(sub.ch)
		sub.owner.mu.Unlock()
	})
}

// offer replaces any undelivered snapshot with snap. Caller holds sync.mu.
func (sub *Subscription) offer(snap Snapshot) {
	select {
	case <-sub.ch:
	default:
	}
	select {
	case sub.ch <- snap:
	default:
	}
}

// FilterByCategory projects a delivered list onto one category without re-querying.
// An empty category or "all" returns the input unchanged.
func FilterByCategory(candidates []models.Candidate, category string) []models.Candidate {
	if category == "" || category == "all" {
		return candidates
	}
	out := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chatflow

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danielhkuo/ai-ceo/logger"
	"github.com/danielhkuo/ai-ceo/quotes"
)

const DefaultIdleTimeout = 30 * time.Minute

// Turn records one accepted action.
type Turn struct {
	From   State
	To     State
	Action ActionKind
	At     time.Time
}

type Session struct {
	ID        string
	State     State
	Goal      string
	Quote     *quotes.Quote
	History   []Turn
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s Session) clone() Session {
	if s.Quote != nil {
		q := *s.Quote
		s.Quote = &q
	}
	s.History = append([]Turn(nil), s.History...)
	return s
}

// SessionStore holds sessions in memory and forgets idle ones.
type SessionStore struct {
	idle time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]Session
}

func NewSessionStore(idle time.Duration) *SessionStore {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &SessionStore{
		idle:     idle,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

func (s *SessionStore) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if s.now().Sub(sess.UpdatedAt) > s.idle {
		delete(s.sessions, id)
		return Session{}, ErrSessionNotFound
	}
	return sess.clone(), nil
}

func (s *SessionStore) Put(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess.clone()
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.UpdatedAt) > s.idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.Debug("expired chat sessions", zap.Int("removed", n))
			}
		}
	}
}

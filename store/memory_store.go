// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ai-ceo/models"
)

// MemoryStore is an in-process CandidateStore for tests and demos.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.Candidate
	now     func() time.Time
	seq     time.Duration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]models.Candidate),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Create(_ context.Context, c models.Candidate) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.Name == c.Name && r.Organization == c.Organization {
			return "", ErrDuplicate
		}
	}

	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		// strictly increasing so creation order is observable in ties
		s.seq++
		c.CreatedAt = s.now().Add(s.seq)
	}
	s.records[c.ID] = c
	return c.ID, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]models.Candidate, error) {
	s.mu.RLock()
	out := []models.Candidate{}
	for _, c := range s.records {
		if matches(c, q) {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if q.ByVotes && a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, f Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	if f.Approved != nil {
		c.Approved = *f.Approved
	}
	if f.Category != nil {
		c.Category = *f.Category
	}
	s.records[id] = c
	return nil
}

func (s *MemoryStore) IncrementVotes(_ context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	c.VoteCount += delta
	if c.VoteCount < 0 {
		c.VoteCount = 0
	}
	s.records[id] = c
	return nil
}

func matches(c models.Candidate, q Query) bool {
	if q.Approved != nil && c.Approved != *q.Approved {
		return false
	}
	if q.MinVotes != nil && c.VoteCount < *q.MinVotes {
		return false
	}
	if q.Name != nil && c.Name != *q.Name {
		return false
	}
	if q.Organization != nil && c.Organization != *q.Organization {
		return false
	}
	if q.Category != nil && c.Category != *q.Category {
		return false
	}
	return true
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"

	"github.com/danielhkuo/ai-ceo/models"
)

var (
	ErrNotFound = errors.New("candidate not found")
	// ErrDuplicate is returned by Create when name and organization are already taken.
	ErrDuplicate = errors.New("candidate already exists")
)

// Query filters a candidate lookup. Nil fields do not filter.
type Query struct {
	Approved     *bool
	MinVotes     *int
	Name         *string
	Organization *string
	Category     *string
	// ByVotes orders by vote_count desc, then created_at and id ascending.
	ByVotes bool
	Limit   int
}

// Fields is a partial update. Nil fields are left untouched.
type Fields struct {
	Approved *bool
	Category *string
}

// CandidateStore is the document-store surface the core depends on.
type CandidateStore interface {
	Create(ctx context.Context, c models.Candidate) (string, error)
	Get(ctx context.Context, id string) (*models.Candidate, error)
	Query(ctx context.Context, q Query) ([]models.Candidate, error)
	Update(ctx context.Context, id string, f Fields) error
	// IncrementVotes atomically adds delta to vote_count.
	IncrementVotes(ctx context.Context, id string, delta int) error
}

func Bool(v bool) *bool       { return &v }
func Int(v int) *int          { return &v }
func String(v string) *string { return &v }

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/danielhkuo/ai-ceo/logger"
	"github.com/danielhkuo/ai-ceo/models"
	"github.com/danielhkuo/ai-ceo/store"
)

// DefaultThreshold is the vote count at which a submission becomes public.
const DefaultThreshold = 5

var (
	ErrValidationRejected = errors.New("submission rejected")
	ErrEmptyField         = fmt.Errorf("%w: name and organization are required", ErrValidationRejected)
	ErrInappropriate      = fmt.Errorf("%w: inappropriate content", ErrValidationRejected)
	ErrDuplicate          = fmt.Errorf("%w: candidate already exists", ErrValidationRejected)
	ErrInvalidCategory    = fmt.Errorf("%w: unknown category", ErrValidationRejected)
)

// DefaultDenyList is matched as case-insensitive substrings.
var DefaultDenyList = []string{
	"fuck",
	"shit",
	"bitch",
	"cunt",
	"nazi",
	"hitler",
	"rape",
	"nigger",
	"faggot",
	"retard",
	"porn",
	"kill yourself",
}

// Gate screens submissions and promotes candidates that earned enough votes.
type Gate struct {
	store store.CandidateStore
	deny  []string
}

// NewGate builds a gate. A nil deny list selects DefaultDenyList.
func NewGate(s store.CandidateStore, deny []string) *Gate {
	if deny == nil {
		deny = DefaultDenyList
	}
	lowered := make([]string, 0, len(deny))
	for _, d := range deny {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			lowered = append(lowered, d)
		}
	}
	return &Gate{store: s, deny: lowered}
}

// PromoteQualifying approves every unapproved candidate at or above threshold
// and returns the ids it flipped. A second run with no new votes flips nothing.
// A failed approval does not stop the others; the failures are joined into the error.
func (g *Gate) PromoteQualifying(ctx context.Context, threshold int) ([]string, error) {
	pending, err := g.store.Query(ctx, store.Query{
		Approved: store.Bool(false),
		MinVotes: store.Int(threshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query pending candidates: %w", err)
	}

	promoted := make([]string, 0, len(pending))
	var errs []error
	for _, c := range pending {
		if err := g.store.Update(ctx, c.ID, store.Fields{Approved: store.Bool(true)}); err != nil {
			errs = append(errs, fmt.Errorf("failed to approve candidate %s: %w", c.ID, err))
			continue
		}
		logger.Info("candidate promoted",
			zap.String("candidate_id", c.ID),
			zap.String("name", c.Name),
			zap.Int("votes", c.VoteCount))
		promoted = append(promoted, c.ID)
	}
	return promoted, errors.Join(errs...)
}

// Screen returns nil when a submission may be created.
// The duplicate check is an exact, case-sensitive match on name and organization.
func (g *Gate) Screen(ctx context.Context, name, organization string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(organization) == "" {
		return ErrEmptyField
	}
	if g.inappropriate(name) || g.inappropriate(organization) {
		return ErrInappropriate
	}

	existing, err := g.store.Query(ctx, store.Query{
		Name:         store.String(name),
		Organization: store.String(organization),
		Limit:        1,
	})
	if err != nil {
		return fmt.Errorf("failed to check duplicates: %w", err)
	}
	if len(existing) > 0 {
		return ErrDuplicate
	}
	return nil
}

func (g *Gate) inappropriate(s string) bool {
	s = strings.ToLower(s)
	for _, d := range g.deny {
		if strings.Contains(s, d) {
			return true
		}
	}
	return false
}

// Submit screens and creates a crowd submission, unapproved with one vote.
func (g *Gate) Submit(ctx context.Context, name, organization, category string) (*models.Candidate, error) {
	name = strings.TrimSpace(name)
	organization = strings.TrimSpace(organization)

	cat, ok := models.NormalizeCategory(category)
	if !ok {
		return nil, ErrInvalidCategory
	}
	if err := g.Screen(ctx, name, organization); err != nil {
		return nil, err
	}

	c := models.Candidate{
		Name:         name,
		Organization: organization,
		Category:     cat,
		VoteCount:    1,
		Approved:     false,
	}
	// Screen can race another submission; the store has the final say.
	id, err := g.store.Create(ctx, c)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}

	created, err := g.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read created candidate: %w", err)
	}
	logger.Info("candidate submitted",
		zap.String("candidate_id", id),
		zap.String("category", cat))
	return created, nil
}

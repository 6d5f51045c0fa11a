// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/ai-ceo/logger"
	"github.com/danielhkuo/ai-ceo/models"
	"github.com/danielhkuo/ai-ceo/store"
)

//go:embed seeds.yaml
var defaultSeeds []byte

type Entry struct {
	Name         string `yaml:"name"`
	Organization string `yaml:"organization"`
	Category     string `yaml:"category"`
}

type file struct {
	Candidates []Entry `yaml:"candidates"`
}

// Result counts what a seed run did.
type Result struct {
	Created    int
	Skipped    int
	Reapproved int
}

// Parse decodes and validates a seed document.
func Parse(data []byte) ([]Entry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seeds: %w", err)
	}
	for i, e := range f.Candidates {
		if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Organization) == "" {
			return nil, fmt.Errorf("seed %d: name and organization are required", i)
		}
		cat, ok := models.NormalizeCategory(e.Category)
		if !ok {
			return nil, fmt.Errorf("seed %d (%s): unknown category %q", i, e.Name, e.Category)
		}
		f.Candidates[i].Category = cat
	}
	return f.Candidates, nil
}

// Load reads seeds from path, or the built-in list when path is empty.
func Load(path string) ([]Entry, error) {
	if path == "" {
		return Parse(defaultSeeds)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

type Seeder struct {
	store   store.CandidateStore
	entries []Entry
}

func NewSeeder(s store.CandidateStore, entries []Entry) *Seeder {
	return &Seeder{store: s, entries: entries}
}

// Seed creates every entry that has no exact name and organization match.
func (s *Seeder) Seed(ctx context.Context) (Result, error) {
	var res Result
	for _, e := range s.entries {
		existing, err := s.find(ctx, e)
		if err != nil {
			return res, err
		}
		if existing != nil {
			res.Skipped++
			continue
		}
		err = s.create(ctx, e)
		if errors.Is(err, store.ErrDuplicate) {
			// created concurrently by another instance
			res.Skipped++
			continue
		}
		if err != nil {
			return res, err
		}
		res.Created++
	}
	logger.Info("seeded candidates", zap.Int("created", res.Created), zap.Int("skipped", res.Skipped))
	return res, nil
}

// Reset hides every candidate, then re-seeds, approving existing seed records again.
func (s *Seeder) Reset(ctx context.Context) (Result, error) {
	approved, err := s.store.Query(ctx, store.Query{Approved: store.Bool(true)})
	if err != nil {
		return Result{}, fmt.Errorf("failed to list approved candidates: %w", err)
	}
	for _, c := range approved {
		if err := s.store.Update(ctx, c.ID, store.Fields{Approved: store.Bool(false)}); err != nil {
			return Result{}, fmt.Errorf("failed to unapprove %s: %w", c.ID, err)
		}
	}

	var res Result
	for _, e := range s.entries {
		existing, err := s.find(ctx, e)
		if err != nil {
			return res, err
		}
		if existing == nil {
			if err := s.create(ctx, e); err != nil {
				return res, err
			}
			res.Created++
			continue
		}
		if err := s.store.Update(ctx, existing.ID, store.Fields{Approved: store.Bool(true)}); err != nil {
			return res, fmt.Errorf("failed to reapprove %s: %w", existing.ID, err)
		}
		res.Reapproved++
	}
	logger.Warn("candidates reset",
		zap.Int("hidden", len(approved)),
		zap.Int("created", res.Created),
		zap.Int("reapproved", res.Reapproved))
	return res, nil
}

func (s *Seeder) find(ctx context.Context, e Entry) (*models.Candidate, error) {
	found, err := s.store.Query(ctx, store.Query{
		Name:         store.String(e.Name),
		Organization: store.String(e.Organization),
		Limit:        1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up seed %s: %w", e.Name, err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (s *Seeder) create(ctx context.Context, e Entry) error {
	_, err := s.store.Create(ctx, models.Candidate{
		Name:         e.Name,
		Organization: e.Organization,
		Category:     e.Category,
		VoteCount:    0,
		Approved:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to create seed %s: %w", e.Name, err)
	}
	return nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielhkuo/ai-ceo/kv"
)

const keyPrefix = "quote:"

var ErrQuoteNotFound = errors.New("quote not found")

// Archive keeps generated quotes so share links resolve later.
type Archive struct {
	store kv.Store
}

func NewArchive(s kv.Store) *Archive {
	return &Archive{store: s}
}

func (a *Archive) Save(ctx context.Context, q Quote) error {
	b, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to encode quote: %w", err)
	}
	if err := a.store.Set(ctx, keyPrefix+q.Slug, string(b)); err != nil {
		return fmt.Errorf("failed to save quote: %w", err)
	}
	return nil
}

func (a *Archive) Load(ctx context.Context, slug string) (Quote, error) {
	raw, ok, err := a.store.Get(ctx, keyPrefix+slug)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to load quote: %w", err)
	}
	if !ok {
		return Quote{}, ErrQuoteNotFound
	}
	var q Quote
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return Quote{}, fmt.Errorf("failed to decode quote: %w", err)
	}
	return q, nil
}

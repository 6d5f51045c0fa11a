// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package moderation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/ai-ceo/db"
	"github.com/danielhkuo/ai-ceo/models"
	"github.com/danielhkuo/ai-ceo/store"
)

func create(t *testing.T, s store.CandidateStore, c models.Candidate) string {
	t.Helper()
	id, err := s.Create(context.Background(), c)
	require.NoError(t, err)
	return id
}

func TestScreen(t *testing.T) {
	s := store.NewMemoryStore()
	create(t, s, models.Candidate{Name: "Jane Doe", Organization: "Acme", VoteCount: 3})
	gate := NewGate(s, nil)

	tests := []struct {
		name         string
		candidate    string
		organization string
		wantErr      error
	}{
		{"exact duplicate", "Jane Doe", "Acme", ErrDuplicate},
		{"different organization", "Jane Doe", "Acme Corp", nil},
		{"different name", "John Doe", "Acme", nil},
		{"case differs", "jane doe", "acme", nil},
		{"empty name", "", "Acme", ErrEmptyField},
		{"blank organization", "Jane", "   ", ErrEmptyField},
		{"deny list in name", "ShitLord", "Acme", ErrInappropriate},
		{"deny list any case", "Bob", "PORN Inc", ErrInappropriate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Screen(context.Background(), tt.candidate, tt.organization)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidationRejected)
		})
	}
}

func TestCustomDenyList(t *testing.T) {
	gate := NewGate(store.NewMemoryStore(), []string{"  Synergy ", ""})

	assert.ErrorIs(t, gate.Screen(context.Background(), "Max SYNERGY", "Acme"), ErrInappropriate)
	assert.NoError(t, gate.Screen(context.Background(), "Jane", "Porn Hub Holdings"))
}

func TestSubmit(t *testing.T) {
	s := store.NewMemoryStore()
	gate := NewGate(s, nil)
	ctx := context.Background()

	c, err := gate.Submit(ctx, "  Jane Doe ", "Acme", "")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Jane Doe", c.Name)
	assert.Equal(t, models.CategoryUncategorized, c.Category)
	assert.Equal(t, 1, c.VoteCount)
	assert.False(t, c.Approved)

	_, err = gate.Submit(ctx, "Jane Doe", "Acme", models.CategoryTech)
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = gate.Submit(ctx, "Jane Doe", "Acme Corp", "space")
	assert.ErrorIs(t, err, ErrInvalidCategory)

	c, err = gate.Submit(ctx, "Jane Doe", "Acme Corp", models.CategoryRetail)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryRetail, c.Category)
}

func TestPromoteQualifying(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	ready := create(t, s, models.Candidate{Name: "A", Organization: "X", VoteCount: 5})
	create(t, s, models.Candidate{Name: "B", Organization: "Y", VoteCount: 4})
	create(t, s, models.Candidate{Name: "C", Organization: "Z", VoteCount: 9, Approved: true})
	gate := NewGate(s, nil)

	promoted, err := gate.PromoteQualifying(ctx, DefaultThreshold)
	require.NoError(t, err)
	assert.Equal(t, []string{ready}, promoted)

	got, err := s.Get(ctx, ready)
	require.NoError(t, err)
	assert.True(t, got.Approved)

	before, err := s.Query(ctx, store.Query{})
	require.NoError(t, err)

	promoted, err = gate.PromoteQualifying(ctx, DefaultThreshold)
	require.NoError(t, err)
	assert.Empty(t, promoted)

	after, err := s.Query(ctx, store.Query{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

type failingStore struct {
	store.CandidateStore
	failures int
	calls    int
}

func (f *failingStore) Query(ctx context.Context, q store.Query) ([]models.Candidate, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("unavailable")
	}
	return f.CandidateStore.Query(ctx, q)
}

func TestPromoteQualifyingQueryError(t *testing.T) {
	gate := NewGate(&failingStore{CandidateStore: store.NewMemoryStore(), failures: 1}, nil)
	_, err := gate.PromoteQualifying(context.Background(), DefaultThreshold)
	assert.Error(t, err)
}

// slowCreate delays every write so concurrent submissions all pass Screen first.
type slowCreate struct {
	store.CandidateStore
}

func (s slowCreate) Create(ctx context.Context, c models.Candidate) (string, error) {
	time.Sleep(5 * time.Millisecond)
	return s.CandidateStore.Create(ctx, c)
}

func newSQLiteStore(t *testing.T) store.CandidateStore {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, db.TypeSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.CreateSchema(ctx, conn))
	return store.NewSQLStore(conn)
}

func TestSubmitConcurrentDuplicates(t *testing.T) {
	backends := map[string]func(t *testing.T) store.CandidateStore{
		"memory": func(*testing.T) store.CandidateStore { return store.NewMemoryStore() },
		"sqlite": newSQLiteStore,
	}

	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			gate := NewGate(slowCreate{s}, nil)
			ctx := context.Background()

			const submitters = 50
			var (
				wg       sync.WaitGroup
				mu       sync.Mutex
				accepted int
				dupes    int
			)
			for i := 0; i < submitters; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := gate.Submit(ctx, "Jane Doe", "Acme", "")
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						accepted++
					case errors.Is(err, ErrDuplicate):
						dupes++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, accepted)
			assert.Equal(t, submitters-1, dupes)

			got, err := s.Query(ctx, store.Query{Name: store.String("Jane Doe"), Organization: store.String("Acme")})
			require.NoError(t, err)
			assert.Len(t, got, 1)
		})
	}
}

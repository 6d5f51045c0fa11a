// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/danielhkuo/ai-ceo/models"
	"github.com/danielhkuo/ai-ceo/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// flakyStore fails queries while down is set.
type flakyStore struct {
	store.CandidateStore
	down atomic.Bool
}

func (f *flakyStore) Query(ctx context.Context, q store.Query) ([]models.Candidate, error) {
	if f.down.Load() {
		return nil, errors.New("connection reset")
	}
	return f.CandidateStore.Query(ctx, q)
}

func seedStore(t *testing.T, s store.CandidateStore, candidates ...models.Candidate) []string {
	t.Helper()
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		id, err := s.Create(context.Background(), c)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func receive(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func names(candidates []models.Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Name
	}
	return out
}

func TestSubscribeDeliversApprovedByVotes(t *testing.T) {
	s := store.NewMemoryStore()
	seedStore(t, s,
		models.Candidate{Name: "Low", Organization: "A", Category: models.CategoryTech, VoteCount: 1, Approved: true},
		models.Candidate{Name: "Hidden", Organization: "B", Category: models.CategoryTech, VoteCount: 99},
		models.Candidate{Name: "High", Organization: "C", Category: models.CategoryFinance, VoteCount: 10, Approved: true},
	)

	lb := NewSync(s, NewLocalFeed(), time.Minute)
	defer lb.Close()

	sub := lb.Subscribe(context.Background())
	defer sub.Close()

	snap := receive(t, sub)
	assert.Equal(t, []string{"High", "Low"}, names(snap.Candidates))
	assert.True(t, lb.Connected())
}

func TestRunRedeliversOnChange(t *testing.T) {
	s := store.NewMemoryStore()
	ids := seedStore(t, s,
		models.Candidate{Name: "A", Organization: "X", VoteCount: 4},
		models.Candidate{Name: "B", Organization: "Y", VoteCount: 2, Approved: true},
	)

	feed := NewLocalFeed()
	lb := NewSync(s, feed, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		lb.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
		lb.Close()
	}()

	sub := lb.Subscribe(ctx)
	assert.Equal(t, []string{"B"}, names(receive(t, sub).Candidates))

	require.NoError(t, s.IncrementVotes(ctx, ids[0], 1))
	require.NoError(t, s.Update(ctx, ids[0], store.Fields{Approved: store.Bool(true)}))
	require.NoError(t, lb.Publish(ctx))

	assert.Eventually(t, func() bool {
		latest, ok := lb.Latest()
		return ok && len(latest.Candidates) == 2
	}, 2*time.Second, 10*time.Millisecond)

	snap := receive(t, sub)
	assert.Equal(t, []string{"A", "B"}, names(snap.Candidates))
	assert.Equal(t, 5, snap.Candidates[0].VoteCount)
}

func TestCloseStopsDeliveries(t *testing.T) {
	s := store.NewMemoryStore()
	seedStore(t, s, models.Candidate{Name: "A", Organization: "X", Approved: true})

	lb := NewSync(s, NewLocalFeed(), time.Minute)
	defer lb.Close()

	sub := lb.Subscribe(context.Background())
	receive(t, sub)
	sub.Close()
	sub.Close()

	lb.Refresh(context.Background())
	_, ok := <-sub.C()
	assert.False(t, ok)
	assert.Equal(t, 0, lb.Subscribers())
}

func TestContextCancelClosesSubscription(t *testing.T) {
	lb := NewSync(store.NewMemoryStore(), NewLocalFeed(), time.Minute)
	defer lb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := lb.Subscribe(ctx)
	cancel()

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed after cancel")
	}
	assert.Eventually(t, func() bool { return lb.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSyncCloseEndsAllSubscriptions(t *testing.T) {
	lb := NewSync(store.NewMemoryStore(), NewLocalFeed(), time.Minute)
	a := lb.Subscribe(context.Background())
	b := lb.Subscribe(context.Background())

	lb.Close()

	for _, sub := range []*Subscription{a, b} {
		<-sub.Done()
	}
	late := lb.Subscribe(context.Background())
	_, ok := <-late.C()
	assert.False(t, ok)
}

func TestFailureKeepsLastSnapshot(t *testing.T) {
	fs := &flakyStore{CandidateStore: store.NewMemoryStore()}
	seedStore(t, fs, models.Candidate{Name: "A", Organization: "X", Approved: true, VoteCount: 3})

	lb := NewSync(fs, NewLocalFeed(), time.Minute)
	defer lb.Close()
	sub := lb.Subscribe(context.Background())
	defer sub.Close()
	receive(t, sub)

	fs.down.Store(true)
	assert.False(t, lb.Refresh(context.Background()))
	assert.False(t, lb.Connected())

	latest, ok := lb.Latest()
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, names(latest.Candidates))

	select {
	case <-sub.C():
		t.Fatal("nothing should be delivered on failure")
	default:
	}

	fs.down.Store(false)
	assert.True(t, lb.Refresh(context.Background()))
	assert.True(t, lb.Connected())
	receive(t, sub)
}

func TestSlowSubscriberGetsLatest(t *testing.T) {
	s := store.NewMemoryStore()
	ids := seedStore(t, s, models.Candidate{Name: "A", Organization: "X", Approved: true})

	lb := NewSync(s, NewLocalFeed(), time.Minute)
	defer lb.Close()
	sub := lb.Subscribe(context.Background())
	defer sub.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.IncrementVotes(context.Background(), ids[0], 1))
		lb.Refresh(context.Background())
	}

	snap := receive(t, sub)
	assert.Equal(t, 5, snap.Candidates[0].VoteCount)
}

func TestFilterByCategory(t *testing.T) {
	list := []models.Candidate{
		{Name: "A", Category: models.CategoryTech},
		{Name: "B", Category: models.CategoryMedia},
		{Name: "C", Category: models.CategoryTech},
	}

	tests := []struct {
		category string
		want     []string
	}{
		{"", []string{"A", "B", "C"}},
		{"all", []string{"A", "B", "C"}},
		{models.CategoryTech, []string{"A", "C"}},
		{models.CategoryEnergy, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.want, names(FilterByCategory(list, tt.category)))
		})
	}
}

func TestLocalFeedCoalesces(t *testing.T) {
	feed := NewLocalFeed()
	for i := 0; i < 3; i++ {
		require.NoError(t, feed.Publish(context.Background()))
	}
	<-feed.Changes()
	select {
	case <-feed.Changes():
		t.Fatal("expected notifications to coalesce")
	default:
	}
}

// stallingStore reads, then holds its first query result until release is closed.
type stallingStore struct {
	store.CandidateStore
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (s *stallingStore) Query(ctx context.Context, q store.Query) ([]models.Candidate, error) {
	out, err := s.CandidateStore.Query(ctx, q)
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.read)
		<-s.release
	}
	return out, err
}

func TestSlowRefreshDoesNotOverwriteNewer(t *testing.T) {
	mem := store.NewMemoryStore()
	ids := seedStore(t, mem,
		models.Candidate{Name: "A", Organization: "X", Category: models.CategoryTech, VoteCount: 1, Approved: true},
	)
	st := &stallingStore{CandidateStore: mem, read: make(chan struct{}), release: make(chan struct{})}

	lb := NewSync(st, NewLocalFeed(), time.Minute)
	defer lb.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		lb.Refresh(ctx)
	}()
	<-st.read

	require.NoError(t, mem.IncrementVotes(ctx, ids[0], 1))
	go func() {
		defer wg.Done()
		lb.Refresh(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	close(st.release)
	wg.Wait()

	snap, ok := lb.Latest()
	require.True(t, ok)
	require.Len(t, snap.Candidates, 1)
	assert.Equal(t, 2, snap.Candidates[0].VoteCount)
}

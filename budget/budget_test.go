// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package budget

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/ai-ceo/kv"
)

const device = "6f1c1a56-6f7e-4a43-9d35-0f3d5e0b7c11"

// brokenStore fails every call, like a full or disabled storage backend.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage disabled")
}
func (brokenStore) Set(context.Context, string, string) error { return errors.New("quota exceeded") }
func (brokenStore) Remove(context.Context, string) error      { return errors.New("storage disabled") }

// writeFailStore reads fine but refuses writes.
type writeFailStore struct{ *kv.MemoryStore }

func (writeFailStore) Set(context.Context, string, string) error { return errors.New("quota exceeded") }

func TestConsumeUntilExhausted(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(kv.NewMemoryStore(), 3)

	assert.True(t, tr.Consume(ctx, device))
	assert.True(t, tr.Consume(ctx, device))
	assert.True(t, tr.Consume(ctx, device))
	assert.False(t, tr.Consume(ctx, device))

	assert.Equal(t, Status{Consumed: 3, Remaining: 0, HasVotesLeft: false}, tr.Status(ctx, device))
}

func TestRefundReopensBudget(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(kv.NewMemoryStore(), 3)
	for i := 0; i < 3; i++ {
		tr.Consume(ctx, device)
	}

	st := tr.Refund(ctx, device, 1)
	assert.Equal(t, Status{Consumed: 2, Remaining: 1, HasVotesLeft: true}, st)
	assert.Equal(t, st, tr.Status(ctx, device))

	assert.True(t, tr.Consume(ctx, device))
	assert.False(t, tr.Consume(ctx, device))
}

func TestConsumeAtZeroHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	tr := NewTracker(store, 1)

	require.True(t, tr.Consume(ctx, device))
	before, _, _ := store.Get(ctx, keyPrefix+device)

	assert.False(t, tr.Consume(ctx, device))
	after, _, _ := store.Get(ctx, keyPrefix+device)
	assert.Equal(t, before, after)
}

func TestRefundNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(kv.NewMemoryStore(), 3)
	tr.Consume(ctx, device)

	st := tr.Refund(ctx, device, 10)
	assert.Equal(t, 0, st.Consumed)
	assert.Equal(t, 3, st.Remaining)
}

func TestDevicesAreIndependent(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(kv.NewMemoryStore(), 1)

	assert.True(t, tr.Consume(ctx, "device-a"))
	assert.False(t, tr.Consume(ctx, "device-a"))
	assert.True(t, tr.Consume(ctx, "device-b"))
}

func TestCorruptValueReadsAsZero(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	tr := NewTracker(store, 3)

	for _, raw := range []string{"banana", "-4", ""} {
		require.NoError(t, store.Set(ctx, keyPrefix+device, raw))
		assert.Equal(t, 0, tr.Status(ctx, device).Consumed, "value %q", raw)
	}
}

func TestFailOpenWhenStorageUnavailable(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(brokenStore{}, 2)

	for i := 0; i < 10; i++ {
		assert.True(t, tr.Consume(ctx, device), "vote %d should be allowed", i)
	}
	assert.Equal(t, Status{Consumed: 0, Remaining: 2, HasVotesLeft: true}, tr.Status(ctx, device))
	assert.Error(t, tr.Reset(ctx, device))
}

func TestFailOpenWhenWritesFail(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(writeFailStore{kv.NewMemoryStore()}, 1)

	assert.True(t, tr.Consume(ctx, device))
	assert.True(t, tr.Consume(ctx, device))
}

func TestUnlock(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(kv.NewMemoryStore(), 5)
	for i := 0; i < 5; i++ {
		tr.Consume(ctx, device)
	}

	st, err := tr.Unlock(ctx, device, UnlockShare)
	require.NoError(t, err)
	assert.Equal(t, 4, st.Consumed)

	st, err = tr.Unlock(ctx, device, UnlockEmailCEO)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Consumed)

	_, err = tr.Unlock(ctx, device, "tweet")
	assert.ErrorIs(t, err, ErrUnknownUnlockAction)
	assert.Equal(t, 1, tr.Status(ctx, device).Consumed)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(kv.NewMemoryStore(), 2)
	tr.Consume(ctx, device)
	tr.Consume(ctx, device)

	require.NoError(t, tr.Reset(ctx, device))
	assert.Equal(t, Status{Consumed: 0, Remaining: 2, HasVotesLeft: true}, tr.Status(ctx, device))
}

func TestDefaultCap(t *testing.T) {
	assert.Equal(t, DefaultCap, NewTracker(kv.NewMemoryStore(), 0).Cap())
}

func TestUnlockOptionsMatchRefundSizes(t *testing.T) {
	for _, opt := range UnlockOptions() {
		n, ok := RefundSize(opt.Action)
		assert.True(t, ok)
		assert.Equal(t, n, opt.Refund)
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package budget

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/danielhkuo/ai-ceo/kv"
	"github.com/danielhkuo/ai-ceo/logger"
)

const DefaultCap = 3

const keyPrefix = "votes_used:"

var ErrUnknownUnlockAction = errors.New("unknown unlock action")

// Unlock actions and the number of votes each one refunds.
const (
	UnlockShare    = "share"
	UnlockCopyLink = "copy_link"
	UnlockEmailCEO = "email_ceo"
)

var refundSizes = map[string]int{
	UnlockShare:    1,
	UnlockCopyLink: 1,
	UnlockEmailCEO: 3,
}

// UnlockOption pairs an action with its refund size.
type UnlockOption struct {
	Action string
	Refund int
}

// UnlockOptions lists the unlock actions in presentation order.
func UnlockOptions() []UnlockOption {
	return []UnlockOption{
		{UnlockShare, refundSizes[UnlockShare]},
		{UnlockCopyLink, refundSizes[UnlockCopyLink]},
		{UnlockEmailCEO, refundSizes[UnlockEmailCEO]},
	}
}

// RefundSize reports how many votes an unlock action returns.
func RefundSize(action string) (int, bool) {
	n, ok := refundSizes[action]
	return n, ok
}

type Status struct {
	Consumed     int
	Remaining    int
	HasVotesLeft bool
}

// Tracker meters votes per device against a fixed cap.
// Storage failures fail open: a vote is allowed rather than refused.
type Tracker struct {
	store kv.Store
	cap   int
	mu    sync.Mutex
}

func NewTracker(store kv.Store, cap int) *Tracker {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &Tracker{store: store, cap: cap}
}

func (t *Tracker) Cap() int {
	return t.cap
}

func (t *Tracker) status(consumed int) Status {
	remaining := t.cap - consumed
	if remaining < 0 {
		remaining = 0
	}
	return Status{Consumed: consumed, Remaining: remaining, HasVotesLeft: remaining > 0}
}

// Status never fails; unreadable state counts as nothing consumed.
func (t *Tracker) Status(ctx context.Context, device string) Status {
	consumed, _ := t.read(ctx, device)
	return t.status(consumed)
}

func (t *Tracker) read(ctx context.Context, device string) (int, error) {
	raw, ok, err := t.store.Get(ctx, keyPrefix+device)
	if err != nil {
		logger.Warn("vote budget unreadable, treating as unused", zap.String("device", device), zap.Error(err))
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		logger.Warn("corrupt vote budget value", zap.String("device", device), zap.String("value", raw))
		return 0, nil
	}
	return n, nil
}

func (t *Tracker) write(ctx context.Context, device string, consumed int) error {
	return t.store.Set(ctx, keyPrefix+device, strconv.Itoa(consumed))
}

// Consume uses one vote. It returns false, changing nothing, when none remain.
func (t *Tracker) Consume(ctx context.Context, device string) bool {
	if c, ok := t.store.(kv.Counter); ok {
		_, allowed, err := c.ConsumeUpTo(ctx, keyPrefix+device, t.cap)
		if err != nil {
			logger.Warn("vote budget unavailable, allowing vote", zap.String("device", device), zap.Error(err))
			return true
		}
		return allowed
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	consumed, err := t.read(ctx, device)
	if err != nil {
		return true
	}
	if consumed >= t.cap {
		return false
	}
	if err := t.write(ctx, device, consumed+1); err != nil {
		logger.Warn("vote budget not persisted, allowing vote", zap.String("device", device), zap.Error(err))
	}
	return true
}

// Refund returns n consumed votes, never going below zero.
func (t *Tracker) Refund(ctx context.Context, device string, n int) Status {
	if n <= 0 {
		return t.Status(ctx, device)
	}

	if c, ok := t.store.(kv.Counter); ok {
		consumed, err := c.Release(ctx, keyPrefix+device, n)
		if err != nil {
			logger.Warn("vote refund not persisted", zap.String("device", device), zap.Error(err))
			return t.status(0)
		}
		return t.status(consumed)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	consumed, err := t.read(ctx, device)
	if err != nil {
		return t.status(0)
	}
	consumed -= n
	if consumed < 0 {
		consumed = 0
	}
	if err := t.write(ctx, device, consumed); err != nil {
		logger.Warn("vote refund not persisted", zap.String("device", device), zap.Error(err))
	}
	return t.status(consumed)
}

// Unlock refunds the votes earned by a completed unlock action.
func (t *Tracker) Unlock(ctx context.Context, device, action string) (Status, error) {
	n, ok := RefundSize(action)
	if !ok {
		return Status{}, ErrUnknownUnlockAction
	}
	logger.Info("votes unlocked", zap.String("device", device), zap.String("action", action), zap.Int("refund", n))
	return t.Refund(ctx, device, n), nil
}

// Reset clears the device's budget.
func (t *Tracker) Reset(ctx context.Context, device string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Remove(ctx, keyPrefix+device)
}

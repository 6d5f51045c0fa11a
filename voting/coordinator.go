// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danielhkuo/ai-ceo/budget"
	"github.com/danielhkuo/ai-ceo/logger"
	"github.com/danielhkuo/ai-ceo/store"
)

type State string

const (
	StateIdle            State = "idle"
	StateSubmitting      State = "submitting"
	StateSucceeded       State = "succeeded"
	StateFailed          State = "failed"
	StateBudgetExhausted State = "budget_exhausted"
)

const DefaultCooldown = 500 * time.Millisecond

var (
	ErrBudgetExhausted = errors.New("vote budget exhausted")
	ErrVoteInProgress  = errors.New("a vote is already being submitted")
	ErrRemoteWrite     = errors.New("failed to record vote")
)

// Publisher announces a change to the candidate collection.
type Publisher interface {
	Publish(ctx context.Context) error
}

// Enqueuer schedules a moderation pass without waiting for it.
type Enqueuer interface {
	Enqueue()
}

type Options struct {
	Cooldown time.Duration
	// RefundOnFailure returns the consumed vote when the increment fails.
	RefundOnFailure bool
	Publisher       Publisher
	Moderation      Enqueuer
}

// Result describes where a vote attempt ended up.
type Result struct {
	State         State
	CandidateID   string
	Budget        budget.Status
	UnlockOptions []budget.UnlockOption
}

type deviceState struct {
	state State
	gen   uint64
	timer *time.Timer
}

// Coordinator serializes votes per device: one in flight at a time, budget
// first, then the atomic increment, then a cooldown back to idle.
type Coordinator struct {
	store   store.CandidateStore
	tracker *budget.Tracker
	opts    Options

	mu      sync.Mutex
	devices map[string]*deviceState
}

func NewCoordinator(s store.CandidateStore, tracker *budget.Tracker, opts Options) *Coordinator {
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	return &Coordinator{
		store:   s,
		tracker: tracker,
		opts:    opts,
		devices: make(map[string]*deviceState),
	}
}

// State reports the device's current vote state.
func (c *Coordinator) State(device string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ds, ok := c.devices[device]; ok {
		return ds.state
	}
	return StateIdle
}

// Vote casts one vote for candidateID on behalf of device.
func (c *Coordinator) Vote(ctx context.Context, device, candidateID string) (Result, error) {
	res := Result{State: StateIdle, CandidateID: candidateID}

	if _, err := c.store.Get(ctx, candidateID); err != nil {
		return res, fmt.Errorf("failed to load candidate: %w", err)
	}

	gen, ok := c.begin(device)
	if !ok {
		res.State = StateSubmitting
		return res, ErrVoteInProgress
	}

	if !c.tracker.Consume(ctx, device) {
		res.State = c.finish(device, gen, StateBudgetExhausted)
		res.Budget = c.tracker.Status(ctx, device)
		res.UnlockOptions = budget.UnlockOptions()
		logger.Debug("vote blocked by budget", zap.String("device", device))
		return res, ErrBudgetExhausted
	}

	// The increment runs to completion even if the client goes away.
	bg := context.WithoutCancel(ctx)
	if err := c.store.IncrementVotes(bg, candidateID, 1); err != nil {
		logger.Error("vote increment failed",
			zap.String("device", device),
			zap.String("candidate_id", candidateID),
			zap.Bool("refunded", c.opts.RefundOnFailure),
			zap.Error(err))
		if c.opts.RefundOnFailure {
			c.tracker.Refund(bg, device, 1)
		}
		res.State = c.finish(device, gen, StateFailed)
		res.Budget = c.tracker.Status(bg, device)
		return res, fmt.Errorf("%w: %v", ErrRemoteWrite, err)
	}

	if c.opts.Publisher != nil {
		if err := c.opts.Publisher.Publish(bg); err != nil {
			logger.Warn("failed to publish vote", zap.Error(err))
		}
	}
	if c.opts.Moderation != nil {
		c.opts.Moderation.Enqueue()
	}

	res.State = c.finish(device, gen, StateSucceeded)
	res.Budget = c.tracker.Status(bg, device)
	logger.Info("vote recorded",
		zap.String("device", device),
		zap.String("candidate_id", candidateID),
		zap.Int("remaining", res.Budget.Remaining))
	return res, nil
}

// begin moves device into Submitting unless a vote is already in flight.
// A pending cooldown is cancelled.
func (c *Coordinator) begin(device string) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ds, ok := c.devices[device]
	if !ok {
		ds = &deviceState{}
		c.devices[device] = ds
	}
	if ds.state == StateSubmitting {
		return 0, false
	}
	if ds.timer != nil {
		ds.timer.Stop()
		ds.timer = nil
	}
	ds.gen++
	ds.state = StateSubmitting
	return ds.gen, true
}

// finish records the terminal state and schedules the return to idle.
func (c *Coordinator) finish(device string, gen uint64, state State) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	ds, ok := c.devices[device]
	if !ok || ds.gen != gen {
		return state
	}
	ds.state = state
	ds.timer = time.AfterFunc(c.opts.Cooldown, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if cur, ok := c.devices[device]; ok && cur == ds && ds.gen == gen {
			delete(c.devices, device)
		}
	})
	return state
}

// Close cancels pending cooldowns and forgets all device state.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for device, ds := range c.devices {
		if ds.timer != nil {
			ds.timer.Stop()
		}
		delete(c.devices, device)
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/danielhkuo/ai-ceo/logger"
)

// Publisher announces that the candidate collection changed.
type Publisher interface {
	Publish(ctx context.Context) error
}

type QueueConfig struct {
	Threshold int
	// Interval runs a pass on a schedule in addition to triggers. Zero disables it.
	Interval time.Duration
	// Limit and Burst bound how often passes run.
	Limit rate.Limit
	Burst int
	// MaxTries and RetryInterval control retries of a failed pass.
	MaxTries      uint
	RetryInterval time.Duration
	Publisher     Publisher
}

func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		Threshold:     DefaultThreshold,
		Limit:         rate.Every(time.Second),
		Burst:         1,
		MaxTries:      4,
		RetryInterval: 200 * time.Millisecond,
	}
}

// Queue runs moderation passes off the request path.
// Triggers that arrive while a pass is pending collapse into one.
type Queue struct {
	gate    *Gate
	cfg     QueueConfig
	limiter *rate.Limiter
	trigger chan struct{}
}

func NewQueue(gate *Gate, cfg QueueConfig) *Queue {
	def := DefaultQueueConfig()
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.MaxTries == 0 {
		cfg.MaxTries = def.MaxTries
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = def.RetryInterval
	}
	return &Queue{
		gate:    gate,
		cfg:     cfg,
		limiter: rate.NewLimiter(cfg.Limit, cfg.Burst),
		trigger: make(chan struct{}, 1),
	}
}

// Enqueue requests a pass. It never blocks.
func (q *Queue) Enqueue() {
	select {
	case q.trigger <- struct{}{}:
	default:
	}
}

// Run processes triggers until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if q.cfg.Interval > 0 {
		ticker := time.NewTicker(q.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	logger.Info("moderation queue started",
		zap.Int("threshold", q.cfg.Threshold),
		zap.Duration("interval", q.cfg.Interval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("moderation queue stopped")
			return ctx.Err()
		case <-q.trigger:
		case <-tick:
		}

		if err := q.limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}
		if _, err := q.Pass(ctx); err != nil {
			logger.Error("moderation pass failed", zap.Error(err))
		}
	}
}

// Pass runs one promotion pass with retries and publishes a change if anything was promoted.
// Candidates approved by a failed attempt still count, so they are returned and published.
func (q *Queue) Pass(ctx context.Context) ([]string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = q.cfg.RetryInterval

	promoted := []string{}
	seen := make(map[string]bool)
	_, err := backoff.Retry(ctx, func() (int, error) {
		ids, err := q.gate.PromoteQualifying(ctx, q.cfg.Threshold)
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				promoted = append(promoted, id)
			}
		}
		return len(ids), err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(q.cfg.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("moderation pass retrying", zap.Error(err), zap.Duration("next", next))
		}),
	)

	if len(promoted) > 0 && q.cfg.Publisher != nil {
		if err := q.cfg.Publisher.Publish(ctx); err != nil {
			logger.Warn("failed to publish promotions", zap.Error(err))
		}
	}
	if err != nil {
		return promoted, fmt.Errorf("moderation pass: %w", err)
	}
	return promoted, nil
}

func (q *Queue) Threshold() int {
	return q.cfg.Threshold
}

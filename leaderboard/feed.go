// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/danielhkuo/ai-ceo/logger"
)

// Feed carries "the candidate collection changed" notifications.
// Notifications coalesce: many publishes may arrive as one signal.
type Feed interface {
	Publish(ctx context.Context) error
	Changes() <-chan struct{}
	Close() error
}

// LocalFeed notifies within a single process.
type LocalFeed struct {
	ch chan struct{}
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{ch: make(chan struct{}, 1)}
}

func (f *LocalFeed) Publish(context.Context) error {
	select {
	case f.ch <- struct{}{}:
	default:
	}
	return nil
}

func (f *LocalFeed) Changes() <-chan struct{} {
	return f.ch
}

func (f *LocalFeed) Close() error {
	return nil
}

const DefaultChannel = "aiceo:candidates:changed"

// RedisFeed fans notifications out to every server instance over pub/sub.
type RedisFeed struct {
	client  redis.UniversalClient
	channel string
	pubsub  *redis.PubSub
	ch      chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewRedisFeed(ctx context.Context, client redis.UniversalClient, channel string) (*RedisFeed, error) {
	if channel == "" {
		channel = DefaultChannel
	}
	pubsub := client.Subscribe(ctx, channel)
	// Wait for the subscription confirmation so no publish is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	f := &RedisFeed{
		client:  client,
		channel: channel,
		pubsub:  pubsub,
		ch:      make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go f.pump()
	return f, nil
}

func (f *RedisFeed) pump() {
	defer close(f.done)
	for range f.pubsub.Channel() {
		select {
		case f.ch <- struct{}{}:
		default:
		}
	}
}

func (f *RedisFeed) Publish(ctx context.Context) error {
	if err := f.client.Publish(ctx, f.channel, "changed").Err(); err != nil {
		logger.Warn("failed to publish leaderboard change", zap.Error(err))
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (f *RedisFeed) Changes() <-chan struct{} {
	return f.ch
}

func (f *RedisFeed) Close() error {
	var err error
	f.once.Do(func() {
		err = f.pubsub.Close()
		<-f.done
	})
	return err
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package kv is the per-device key/value persistence used by the vote budget.
package kv

import (
	"context"
	"sync"
)

// Store is a string key/value store. Get reports false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Counter is implemented by backends that can consume and release a capped
// integer counter atomically across processes.
type Counter interface {
	// ConsumeUpTo increments the counter at key unless it already reached limit.
	ConsumeUpTo(ctx context.Context, key string, limit int) (consumed int, ok bool, err error)
	// Release decrements the counter by n, flooring at zero.
	Release(ctx context.Context, key string, n int) (consumed int, err error)
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

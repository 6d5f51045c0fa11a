// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// consumeScript increments a capped counter atomically.
// KEYS[1] = counter key
// ARGV[1] = limit
// Returns {allowed, consumed}. Missing or non-numeric values count as 0.
var consumeScript = redis.NewScript(`
local used = tonumber(redis.call("GET", KEYS[1]) or "0") or 0
if used < 0 then
    used = 0
end
local limit = tonumber(ARGV[1])
if used >= limit then
    return {0, used}
end
used = used + 1
redis.call("SET", KEYS[1], used)
return {1, used}
`)

// releaseScript decrements a counter, flooring at zero.
// KEYS[1] = counter key
// ARGV[1] = amount
var releaseScript = redis.NewScript(`
local used = tonumber(redis.call("GET", KEYS[1]) or "0") or 0
used = used - tonumber(ARGV[1])
if used < 0 then
    used = 0
end
redis.call("SET", KEYS[1], used)
return used
`)

// RedisStore implements Store and Counter on Redis.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) ConsumeUpTo(ctx context.Context, key string, limit int) (int, bool, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{s.key(key)}, limit).Result()
	if err != nil {
		return 0, false, fmt.Errorf("redis consume error: %w", err)
	}

	results, ok := res.([]interface{})
	if !ok || len(results) != 2 {
		return 0, false, fmt.Errorf("invalid response from consume script")
	}
	allowed, _ := results[0].(int64)
	used, _ := results[1].(int64)
	return int(used), allowed == 1, nil
}

func (s *RedisStore) Release(ctx context.Context, key string, n int) (int, error) {
	used, err := releaseScript.Run(ctx, s.client, []string{s.key(key)}, n).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis release error: %w", err)
	}
	return int(used), nil
}

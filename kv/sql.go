// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/ai-ceo/db"
)

// SQLStore keeps values in the device_kv table.
type SQLStore struct {
	db *db.DB
}

func NewSQLStore(conn *db.DB) *SQLStore {
	return &SQLStore{db: conn}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.db.Rebind(
		`SELECT kv_value FROM device_kv WHERE kv_key = ?`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO device_kv (kv_key, kv_value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (kv_key) DO UPDATE SET
			kv_value = excluded.kv_value,
			updated_at = excluded.updated_at
	`), key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM device_kv WHERE kv_key = ?`), key)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

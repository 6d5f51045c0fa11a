// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ai-ceo/db"
	"github.com/danielhkuo/ai-ceo/models"
)

const candidateColumns = "id, name, organization, category, vote_count, approved, created_at"

// SQLStore implements CandidateStore on PostgreSQL or SQLite.
type SQLStore struct {
	db  *db.DB
	now func() time.Time
}

func NewSQLStore(conn *db.DB) *SQLStore {
	return &SQLStore{db: conn, now: func() time.Time { return time.Now().UTC() }}
}

func (s *SQLStore) Create(ctx context.Context, c models.Candidate) (string, error) {
	id := uuid.NewString()
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO candidate (id, name, organization, category, vote_count, approved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), id, c.Name, c.Organization, c.Category, c.VoteCount, c.Approved, createdAt)
	if db.IsUniqueViolation(err) {
		return "", ErrDuplicate
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert candidate: %w", err)
	}

	return id, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*models.Candidate, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(
		"SELECT "+candidateColumns+" FROM candidate WHERE id = ?"), id)

	var c models.Candidate
	err := row.Scan(&c.ID, &c.Name, &c.Organization, &c.Category, &c.VoteCount, &c.Approved, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return &c, nil
}

func (s *SQLStore) Query(ctx context.Context, q Query) ([]models.Candidate, error) {
	var (
		where []string
		args  []any
	)
	if q.Approved != nil {
		where = append(where, "approved = ?")
		args = append(args, *q.Approved)
	}
	if q.MinVotes != nil {
		where = append(where, "vote_count >= ?")
		args = append(args, *q.MinVotes)
	}
	if q.Name != nil {
		where = append(where, "name = ?")
		args = append(args, *q.Name)
	}
	if q.Organization != nil {
		where = append(where, "organization = ?")
		args = append(args, *q.Organization)
	}
	if q.Category != nil {
		where = append(where, "category = ?")
		args = append(args, *q.Category)
	}

	query := "SELECT " + candidateColumns + " FROM candidate"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if q.ByVotes {
		query += " ORDER BY vote_count DESC, created_at ASC, id ASC"
	} else {
		query += " ORDER BY created_at ASC, id ASC"
	}
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Organization, &c.Category, &c.VoteCount, &c.Approved, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}

	return candidates, nil
}

func (s *SQLStore) Update(ctx context.Context, id string, f Fields) error {
	var (
		set  []string
		args []any
	)
	if f.Approved != nil {
		set = append(set, "approved = ?")
		args = append(args, *f.Approved)
	}
	if f.Category != nil {
		set = append(set, "category = ?")
		args = append(args, *f.Category)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		"UPDATE candidate SET "+strings.Join(set, ", ")+" WHERE id = ?"), args...)
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	return expectOneRow(res)
}

func (s *SQLStore) IncrementVotes(ctx context.Context, id string, delta int) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE candidate SET vote_count = vote_count + ? WHERE id = ?
	`), delta, id)
	if err != nil {
		return fmt.Errorf("failed to increment votes: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

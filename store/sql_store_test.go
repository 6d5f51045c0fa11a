// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/ai-ceo/db"
	"github.com/danielhkuo/ai-ceo/models"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewSQLStore(db.Wrap(conn, db.TypePostgres)), mock
}

func TestSQLStore_IncrementIsSingleAtomicUpdate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE candidate SET vote_count = vote_count + $1 WHERE id = $2")).
		WithArgs(1, "cand-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.IncrementVotes(context.Background(), "cand-1", 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_IncrementMissingRow(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE candidate SET vote_count")).
		WithArgs(1, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.IncrementVotes(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_IncrementDriverError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE candidate SET vote_count")).
		WillReturnError(errors.New("connection reset"))

	err := s.IncrementVotes(context.Background(), "cand-1", 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_LeaderboardQuery(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "organization", "category", "vote_count", "approved", "created_at"}).
		AddRow("b", "Bob", "Beta", "tech", 9, true, now).
		AddRow("a", "Ann", "Alpha", "finance", 3, true, now)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, name, organization, category, vote_count, approved, created_at FROM candidate WHERE approved = $1 ORDER BY vote_count DESC, created_at ASC, id ASC")).
		WithArgs(true).
		WillReturnRows(rows)

	got, err := s.Query(context.Background(), Query{Approved: Bool(true), ByVotes: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, 9, got[0].VoteCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_PromotionQuery(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE approved = $1 AND vote_count >= $2")).
		WithArgs(false, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "organization", "category", "vote_count", "approved", "created_at"}))

	got, err := s.Query(context.Background(), Query{Approved: Bool(false), MinVotes: Int(5)})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Create(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO candidate")).
		WithArgs(sqlmock.AnyArg(), "Jane Doe", "Acme", "tech", 1, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := s.Create(context.Background(), models.Candidate{Name: "Jane Doe", Organization: "Acme", Category: "tech", VoteCount: 1})
	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_UpdateApproval(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE candidate SET approved = $1 WHERE id = $2")).
		WithArgs(true, "cand-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Update(context.Background(), "cand-1", Fields{Approved: Bool(true)}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_CreateUniqueViolation(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO candidate")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := s.Create(context.Background(), models.Candidate{Name: "Jane Doe", Organization: "Acme"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_CreateOtherError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO candidate")).
		WillReturnError(errors.New("connection reset"))

	_, err := s.Create(context.Background(), models.Candidate{Name: "Jane Doe", Organization: "Acme"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicate)
}

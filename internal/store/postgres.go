// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package store

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUsers implements Users backed by PostgreSQL.
//
// Group membership is a text[] column mutated with targeted array
// expressions, so concurrent group edits for one identity compose
// instead of overwriting each other.
type PostgresUsers struct {
	pool *pgxpool.Pool
}

// NewPostgresUsers creates a user store on the given connection pool.
func NewPostgresUsers(pool *pgxpool.Pool) *PostgresUsers {
	return &PostgresUsers{pool: pool}
}

// Connect opens a pgx pool for the given database URL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, classify("connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, classify("ping", err)
	}
	return pool, nil
}

const recordColumns = `id, name, groups, custom_prefix, custom_suffix, balance, created_at`

// FindByID implements Users.
func (s *PostgresUsers) FindByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanRecord(row, "find by id")
}

// FindByName implements Users.
func (s *PostgresUsers) FindByName(ctx context.Context, name string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM users
		WHERE name = $1
	`, name)
	return scanRecord(row, "find by name")
}

// Insert implements Users. ON CONFLICT DO NOTHING makes concurrent
// first-time creation for the same identity a harmless race.
func (s *PostgresUsers) Insert(ctx context.Context, rec *Record) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	groups := rec.Groups
	if groups == nil {
		groups = []string{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, name, groups, custom_prefix, custom_suffix, balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, rec.Name, groups, rec.CustomPrefix, rec.CustomSuffix, rec.Balance, created)
	if err != nil {
		return classify("insert", err)
	}
	return nil
}

// AddGroup implements Users with set semantics: appending a group the
// user already has leaves the row unchanged but still counts as a match.
func (s *PostgresUsers) AddGroup(ctx context.Context, id uuid.UUID, group string) (bool, error) {
	return s.update(ctx, "add group", `
		UPDATE users
		SET groups = CASE WHEN groups @> ARRAY[$2] THEN groups ELSE array_append(groups, $2) END
		WHERE id = $1
	`, id, group)
}

// RemoveGroup implements Users.
func (s *PostgresUsers) RemoveGroup(ctx context.Context, id uuid.UUID, group string) (bool, error) {
	return s.update(ctx, "remove group", `
		UPDATE users
		SET groups = array_remove(groups, $2)
		WHERE id = $1
	`, id, group)
}

// SetPrefix implements Users.
func (s *PostgresUsers) SetPrefix(ctx context.Context, id uuid.UUID, prefix string) (bool, error) {
	return s.update(ctx, "set prefix", `
		UPDATE users SET custom_prefix = $2 WHERE id = $1
	`, id, prefix)
}

// SetSuffix implements Users.
func (s *PostgresUsers) SetSuffix(ctx context.Context, id uuid.UUID, suffix string) (bool, error) {
	return s.update(ctx, "set suffix", `
		UPDATE users SET custom_suffix = $2 WHERE id = $1
	`, id, suffix)
}

// SetBalance implements Users.
func (s *PostgresUsers) SetBalance(ctx context.Context, id uuid.UUID, amount float64) (bool, error) {
	return s.update(ctx, "set balance", `
		UPDATE users SET balance = $2 WHERE id = $1
	`, id, amount)
}

// AddBalance implements Users.
func (s *PostgresUsers) AddBalance(ctx context.Context, id uuid.UUID, delta float64) (bool, error) {
	return s.update(ctx, "add balance", `
		UPDATE users SET balance = balance + $2 WHERE id = $1
	`, id, delta)
}

// SetName implements Users.
func (s *PostgresUsers) SetName(ctx context.Context, id uuid.UUID, name string) (bool, error) {
	return s.update(ctx, "set name", `
		UPDATE users SET name = $2 WHERE id = $1
	`, id, name)
}

func (s *PostgresUsers) update(ctx context.Context, operation, sql string, args ...any) (bool, error) {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return false, classify(operation, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanRecord(row pgx.Row, operation string) (*Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Groups,
		&rec.CustomPrefix,
		&rec.CustomSuffix,
		&rec.Balance,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify(operation, err)
	}
	return &rec, nil
}

// classify sorts a driver error into the transient or fatal bucket.
// Connection-class SQLSTATEs, shutdown states, network timeouts and
// abrupt EOFs retry; everything else is fatal and surfaced as-is.
func classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	if isConnectivity(err) {
		return MarkTransient(QueryError(operation, err))
	}
	return QueryError(operation, err)
}

func isConnectivity(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgerrcode.IsConnectionException(pgErr.Code) ||
			pgerrcode.IsOperatorIntervention(pgErr.Code) {
			return true
		}
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

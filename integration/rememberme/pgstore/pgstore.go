// Package pgstore persists remember-me records in PostgreSQL through pgx.
//
// The auth_tokens table is created by the migrations in internal/db/migrations.
// Every operation is a single statement, so rotation is atomic without an
// explicit transaction. When the context carries a transaction (pg.WithTx),
// the store runs inside it.
package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/rememberme/core/rememberme"
	"github.com/dmitrymomot/rememberme/integration/database/pg"
)

// DBTX is the subset of pgx used by the store.
// *pgxpool.Pool, *pgx.Conn and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	findQuery = `SELECT series, token, user_id, created, modified, expires
FROM auth_tokens WHERE series = $1`

	insertQuery = `INSERT INTO auth_tokens (series, token, user_id, created, modified, expires)
VALUES ($1, $2, $3, $4, $4, $5)
ON CONFLICT (series) DO UPDATE SET token = EXCLUDED.token, modified = EXCLUDED.modified, expires = EXCLUDED.expires
RETURNING created, user_id`

	updateQuery = `UPDATE auth_tokens SET token = $2, modified = $3, expires = $4
WHERE series = $1
RETURNING created, user_id`

	deleteSeriesQuery = `DELETE FROM auth_tokens WHERE series = $1`
	deleteUserQuery   = `DELETE FROM auth_tokens WHERE user_id = $1`
	sweepQuery        = `DELETE FROM auth_tokens WHERE expires < $1`
)

// Store implements rememberme.Store on PostgreSQL.
type Store struct {
	db  DBTX
	now func() time.Time
}

var _ rememberme.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for created/modified timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a store on top of db, usually a *pgxpool.Pool.
func New(db DBTX, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) conn(ctx context.Context) DBTX {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx
	}
	return s.db
}

// FindBySeries loads the record for series.
func (s *Store) FindBySeries(ctx context.Context, series string) (rememberme.Record, error) {
	var rec rememberme.Record
	err := s.conn(ctx).QueryRow(ctx, findQuery, series).Scan(
		&rec.Series, &rec.TokenHash, &rec.UserID, &rec.CreatedAt, &rec.UpdatedAt, &rec.ExpiresAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return rememberme.Record{}, rememberme.ErrNotFound
		}
		return rememberme.Record{}, err
	}
	return rec, nil
}

// Save inserts a new record or rotates a persisted one. A persisted record
// whose row is gone is reported as rememberme.ErrNotFound, not re-inserted.
func (s *Store) Save(ctx context.Context, rec *rememberme.Record) error {
	now := s.now().UTC()

	var (
		created time.Time
		userID  uuid.UUID
		err     error
	)
	if rec.IsPersisted() {
		err = s.conn(ctx).QueryRow(ctx, updateQuery,
			rec.Series, rec.TokenHash, now, rec.ExpiresAt,
		).Scan(&created, &userID)
	} else {
		err = s.conn(ctx).QueryRow(ctx, insertQuery,
			rec.Series, rec.TokenHash, rec.UserID, now, rec.ExpiresAt,
		).Scan(&created, &userID)
	}
	if err != nil {
		if pg.IsNotFoundError(err) {
			return rememberme.ErrNotFound
		}
		if pg.IsForeignKeyViolationError(err) {
			return errors.Join(rememberme.ErrInvalidUserID, err)
		}
		return err
	}

	rec.CreatedAt = created
	rec.UpdatedAt = now
	rec.UserID = userID
	return nil
}

// DeleteBySeries removes one chain.
func (s *Store) DeleteBySeries(ctx context.Context, series string) error {
	_, err := s.conn(ctx).Exec(ctx, deleteSeriesQuery, series)
	return err
}

// DeleteAllByUser removes every chain of userID.
func (s *Store) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := s.conn(ctx).Exec(ctx, deleteUserQuery, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SweepExpired removes records that expired before now. The expires column is indexed.
func (s *Store) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.conn(ctx).Exec(ctx, sweepQuery, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

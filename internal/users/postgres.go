package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/rememberme/integration/database/pg"
)

// DBTX is the subset of pgx used by the repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores users in the users table. Deleting a user
// cascades to its auth_tokens rows.
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a repository on db, usually a *pgxpool.Pool.
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) conn(ctx context.Context) DBTX {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx
	}
	return r.db
}

func (r *PostgresRepository) Create(ctx context.Context, u User) error {
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	return r.find(ctx, `SELECT id, email, password_hash, created FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.find(ctx, `SELECT id, email, password_hash, created FROM users WHERE email = $1`, email)
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) find(ctx context.Context, query string, arg any) (User, error) {
	var u User
	err := r.conn(ctx).QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

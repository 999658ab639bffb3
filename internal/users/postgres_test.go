package users_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rememberme/integration/database/pg"
	"github.com/dmitrymomot/rememberme/internal/users"
)

func newPostgres(t *testing.T) (*users.PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return users.NewPostgresRepository(mock), mock
}

func TestPostgresRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u := users.User{ID: uuid.New(), Email: "alice@example.com", PasswordHash: "hash", CreatedAt: created}

	t.Run("create", func(t *testing.T) {
		t.Parallel()
		repo, mock := newPostgres(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(u.ID, u.Email, u.PasswordHash, u.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Create(ctx, u))
	})

	t.Run("create duplicate email", func(t *testing.T) {
		t.Parallel()
		repo, mock := newPostgres(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(u.ID, u.Email, u.PasswordHash, u.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		assert.ErrorIs(t, repo.Create(ctx, u), users.ErrEmailTaken)
	})

	t.Run("find by email", func(t *testing.T) {
		t.Parallel()
		repo, mock := newPostgres(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
			WithArgs(u.Email).
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "created"}).
				AddRow(u.ID, u.Email, u.PasswordHash, u.CreatedAt))

		got, err := repo.FindByEmail(ctx, u.Email)
		require.NoError(t, err)
		assert.Equal(t, u, got)
	})

	t.Run("find by id missing", func(t *testing.T) {
		t.Parallel()
		repo, mock := newPostgres(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WithArgs(u.ID).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindByID(ctx, u.ID)
		assert.ErrorIs(t, err, users.ErrNotFound)
	})

	t.Run("delete uses context transaction", func(t *testing.T) {
		t.Parallel()
		repo, mock := newPostgres(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
			WithArgs(u.ID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		err := pg.InTx(ctx, mock, func(ctx context.Context) error {
			return repo.Delete(ctx, u.ID)
		})
		require.NoError(t, err)
	})
}

package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rememberme/core/session"
	"github.com/dmitrymomot/rememberme/integration/session/redisstore"
)

type data struct {
	Theme string
}

func newStore(t *testing.T) (*redisstore.Store[data], *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.New[data](client, redisstore.WithPrefix("s:")), mr
}

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := newStore(t)

	sess, err := session.New[data](time.Hour)
	require.NoError(t, err)
	sess.Data.Theme = "dark"
	sess.Set("remember_me", "attempted")
	require.NoError(t, store.Save(ctx, &sess))

	t.Run("get by token", func(t *testing.T) {
		got, err := store.GetByToken(ctx, sess.Token)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, got.ID)
		assert.Equal(t, "dark", got.Data.Theme)
		v, ok := got.Get("remember_me")
		assert.True(t, ok)
		assert.Equal(t, "attempted", v)
	})

	t.Run("keys expire with the session", func(t *testing.T) {
		ttl := mr.TTL("s:session:" + sess.ID.String())
		assert.Greater(t, ttl, 50*time.Minute)
		assert.LessOrEqual(t, ttl, time.Hour)
	})

	t.Run("token rotation drops old index", func(t *testing.T) {
		oldToken := sess.Token
		require.NoError(t, sess.Authenticate(uuid.New()))
		require.NoError(t, store.Save(ctx, &sess))

		_, err := store.GetByToken(ctx, oldToken)
		assert.ErrorIs(t, err, session.ErrNotFound)

		got, err := store.GetByToken(ctx, sess.Token)
		require.NoError(t, err)
		assert.Equal(t, sess.UserID, got.UserID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, sess.ID))
		_, err := store.GetByID(ctx, sess.ID)
		assert.ErrorIs(t, err, session.ErrNotFound)
		_, err = store.GetByToken(ctx, sess.Token)
		assert.ErrorIs(t, err, session.ErrNotFound)

		assert.ErrorIs(t, store.Delete(ctx, sess.ID), session.ErrNotFound)
	})
}

func TestStoreWithManager(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newStore(t)
	mgr := session.NewManager[data](store)

	sess, err := mgr.New(ctx)
	require.NoError(t, err)
	require.NoError(t, mgr.Store(ctx, sess))

	loaded, err := mgr.GetByToken(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.False(t, loaded.IsAuthenticated())
}

func TestStoreUnavailable(t *testing.T) {
	t.Parallel()

	store, mr := newStore(t)
	mr.Close()

	_, err := store.GetByToken(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrNotFound)
}

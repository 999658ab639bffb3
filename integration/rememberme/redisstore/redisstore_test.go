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

	"github.com/dmitrymomot/rememberme/core/rememberme"
	"github.com/dmitrymomot/rememberme/core/rememberme/storetest"
	"github.com/dmitrymomot/rememberme/integration/rememberme/redisstore"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestStoreContract(t *testing.T) {
	t.Parallel()

	storetest.Run(t, func(t *testing.T, clock func() time.Time) rememberme.Store {
		_, client := newClient(t)
		return redisstore.New(client, redisstore.WithClock(clock))
	})
}

func TestKeyLayout(t *testing.T) {
	t.Parallel()

	srv, client := newClient(t)
	store := redisstore.New(client, redisstore.WithPrefix("rm:"))
	ctx := context.Background()
	user := uuid.New()

	rec := &rememberme.Record{Series: "abc", TokenHash: "hash", UserID: user, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Save(ctx, rec))

	assert.True(t, srv.Exists("rm:series:abc"))
	assert.Equal(t, "hash", srv.HGet("rm:series:abc", "token"))
	members, err := srv.SMembers("rm:user:" + user.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, members)
	assert.Positive(t, srv.TTL("rm:series:abc"))

	require.NoError(t, store.DeleteBySeries(ctx, "abc"))
	assert.False(t, srv.Exists("rm:series:abc"))
	assert.False(t, srv.Exists("rm:user:"+user.String()))
}

func TestUnavailable(t *testing.T) {
	t.Parallel()

	srv, client := newClient(t)
	store := redisstore.New(client)
	srv.Close()

	_, err := store.FindBySeries(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, rememberme.ErrNotFound)
}

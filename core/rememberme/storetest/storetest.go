// Package storetest checks a rememberme.Store implementation against the
// store contract. Backend packages call Run from their tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rememberme/core/rememberme"
)

// Factory returns an empty store that stamps records with clock.
type Factory func(t *testing.T, clock func() time.Time) rememberme.Store

// Run executes the contract tests. Timestamps are compared at millisecond
// precision, which every backend keeps.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	base := time.Now().UTC().Truncate(time.Second)
	fixed := func() time.Time { return base }

	t.Run("save sets timestamps", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t, fixed)
		user := uuid.New()

		rec := &rememberme.Record{Series: series(), TokenHash: "h1", UserID: user, ExpiresAt: base.Add(time.Hour)}
		require.NoError(t, store.Save(ctx, rec))
		sameTime(t, base, rec.CreatedAt)
		sameTime(t, base, rec.UpdatedAt)

		got, err := store.FindBySeries(ctx, rec.Series)
		require.NoError(t, err)
		assert.Equal(t, rec.Series, got.Series)
		assert.Equal(t, "h1", got.TokenHash)
		assert.Equal(t, user, got.UserID)
		sameTime(t, base, got.CreatedAt)
		sameTime(t, base.Add(time.Hour), got.ExpiresAt)
	})

	t.Run("find unknown series", func(t *testing.T) {
		_, err := newStore(t, fixed).FindBySeries(context.Background(), series())
		assert.ErrorIs(t, err, rememberme.ErrNotFound)
	})

	t.Run("rotation keeps series owner and created", func(t *testing.T) {
		ctx := context.Background()
		var mu sync.Mutex
		current := base
		store := newStore(t, func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return current
		})
		user := uuid.New()

		rec := &rememberme.Record{Series: series(), TokenHash: "h1", UserID: user, ExpiresAt: base.Add(time.Hour)}
		require.NoError(t, store.Save(ctx, rec))

		mu.Lock()
		current = base.Add(time.Minute)
		mu.Unlock()

		loaded, err := store.FindBySeries(ctx, rec.Series)
		require.NoError(t, err)
		loaded.TokenHash = "h2"
		loaded.ExpiresAt = base.Add(2 * time.Hour)
		require.NoError(t, store.Save(ctx, &loaded))
		assert.Equal(t, user, loaded.UserID)
		sameTime(t, base, loaded.CreatedAt)
		sameTime(t, base.Add(time.Minute), loaded.UpdatedAt)

		got, err := store.FindBySeries(ctx, rec.Series)
		require.NoError(t, err)
		assert.Equal(t, "h2", got.TokenHash)
		assert.Equal(t, user, got.UserID)
		sameTime(t, base, got.CreatedAt)
		sameTime(t, base.Add(time.Minute), got.UpdatedAt)
		sameTime(t, base.Add(2*time.Hour), got.ExpiresAt)
	})

	t.Run("deleted record is not resurrected", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t, fixed)

		rec := &rememberme.Record{Series: series(), TokenHash: "h1", UserID: uuid.New(), ExpiresAt: base.Add(time.Hour)}
		require.NoError(t, store.Save(ctx, rec))
		loaded, err := store.FindBySeries(ctx, rec.Series)
		require.NoError(t, err)

		require.NoError(t, store.DeleteBySeries(ctx, rec.Series))

		loaded.TokenHash = "h2"
		assert.ErrorIs(t, store.Save(ctx, &loaded), rememberme.ErrNotFound)
		_, err = store.FindBySeries(ctx, rec.Series)
		assert.ErrorIs(t, err, rememberme.ErrNotFound)
	})

	t.Run("delete by series is idempotent", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t, fixed)
		s := series()

		require.NoError(t, store.Save(ctx, &rememberme.Record{Series: s, TokenHash: "h", UserID: uuid.New(), ExpiresAt: base.Add(time.Hour)}))
		require.NoError(t, store.DeleteBySeries(ctx, s))
		require.NoError(t, store.DeleteBySeries(ctx, s))
		require.NoError(t, store.DeleteBySeries(ctx, series()))
	})

	t.Run("delete all by user", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t, fixed)
		victim, other := uuid.New(), uuid.New()

		var victimSeries []string
		for range 3 {
			rec := &rememberme.Record{Series: series(), TokenHash: "h", UserID: victim, ExpiresAt: base.Add(time.Hour)}
			require.NoError(t, store.Save(ctx, rec))
			victimSeries = append(victimSeries, rec.Series)
		}
		kept := &rememberme.Record{Series: series(), TokenHash: "h", UserID: other, ExpiresAt: base.Add(time.Hour)}
		require.NoError(t, store.Save(ctx, kept))

		n, err := store.DeleteAllByUser(ctx, victim)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)

		for _, s := range victimSeries {
			_, err := store.FindBySeries(ctx, s)
			assert.ErrorIs(t, err, rememberme.ErrNotFound)
		}
		_, err = store.FindBySeries(ctx, kept.Series)
		assert.NoError(t, err)

		n, err = store.DeleteAllByUser(ctx, victim)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("sweep removes only expired", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t, fixed)
		user := uuid.New()

		expired := &rememberme.Record{Series: series(), TokenHash: "h", UserID: user, ExpiresAt: base.Add(-time.Second)}
		boundary := &rememberme.Record{Series: series(), TokenHash: "h", UserID: user, ExpiresAt: base}
		alive := &rememberme.Record{Series: series(), TokenHash: "h", UserID: user, ExpiresAt: base.Add(time.Hour)}
		for _, rec := range []*rememberme.Record{expired, boundary, alive} {
			require.NoError(t, store.Save(ctx, rec))
		}

		n, err := store.SweepExpired(ctx, base)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		_, err = store.FindBySeries(ctx, expired.Series)
		assert.ErrorIs(t, err, rememberme.ErrNotFound)
		_, err = store.FindBySeries(ctx, boundary.Series)
		assert.NoError(t, err)
		_, err = store.FindBySeries(ctx, alive.Series)
		assert.NoError(t, err)

		// The swept chain no longer counts for its user.
		n, err = store.DeleteAllByUser(ctx, user)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("concurrent saves", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t, fixed)
		user := uuid.New()

		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rec := &rememberme.Record{Series: series(), TokenHash: "h", UserID: user, ExpiresAt: base.Add(time.Hour)}
				assert.NoError(t, store.Save(ctx, rec))
			}()
		}
		wg.Wait()

		n, err := store.DeleteAllByUser(ctx, user)
		require.NoError(t, err)
		assert.EqualValues(t, 16, n)
	})
}

func series() string {
	return fmt.Sprintf("series-%s", uuid.NewString())
}

func sameTime(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.WithinDuration(t, want, got, time.Millisecond)
}

package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rememberme/core/session"
)

// mockStore implements session.Store interface for testing
type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetByID(ctx context.Context, id uuid.UUID) (*session.Session[testData], error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session[testData]), args.Error(1)
}

func (m *mockStore) GetByToken(ctx context.Context, token string) (*session.Session[testData], error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session[testData]), args.Error(1)
}

func (m *mockStore) Save(ctx context.Context, sess *session.Session[testData]) error {
	return m.Called(ctx, sess).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestNewManager(t *testing.T) {
	t.Parallel()

	m := session.NewManager[testData](session.NewMemoryStore[testData]())
	assert.Equal(t, 24*time.Hour, m.TTL())

	m = session.NewManagerFromConfig[testData](session.Config{TTL: time.Hour}, session.NewMemoryStore[testData]())
	assert.Equal(t, time.Hour, m.TTL())
}

func TestManager_GetByToken(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		m := session.NewManager[testData](session.NewMemoryStore[testData]())

		sess, err := m.New(ctx)
		require.NoError(t, err)
		require.NoError(t, m.Store(ctx, sess))

		got, err := m.GetByToken(ctx, sess.Token)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, got.ID)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		expired := newSession(t)
		expired.ExpiresAt = time.Now().Add(-time.Minute)
		store.On("GetByToken", mock.Anything, "tok").Return(&expired, nil)

		_, err := session.NewManager[testData](store).GetByToken(context.Background(), "tok")
		assert.ErrorIs(t, err, session.ErrExpired)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		m := session.NewManager[testData](session.NewMemoryStore[testData]())

		_, err := m.GetByToken(context.Background(), "nope")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})
}

func TestManager_Authenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := session.NewMemoryStore[testData]()
	m := session.NewManager[testData](store)

	anon, err := m.New(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Store(ctx, anon))

	user := uuid.New()
	authed, err := m.Authenticate(ctx, anon, user)
	require.NoError(t, err)
	assert.Equal(t, anon.ID, authed.ID)
	assert.NotEqual(t, anon.Token, authed.Token)

	_, err = m.GetByToken(ctx, anon.Token)
	assert.ErrorIs(t, err, session.ErrNotFound)

	got, err := m.GetByToken(ctx, authed.Token)
	require.NoError(t, err)
	assert.Equal(t, user, got.UserID)
}

func TestManager_Logout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := session.NewManager[testData](session.NewMemoryStore[testData]())

	sess, err := m.New(ctx)
	require.NoError(t, err)
	sess, err = m.Authenticate(ctx, sess, uuid.New())
	require.NoError(t, err)

	anon, err := m.Logout(ctx, sess)
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID, anon.ID)
	assert.False(t, anon.IsAuthenticated())

	_, err = m.GetByID(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = m.GetByID(ctx, anon.ID)
	assert.NoError(t, err)
}

func TestManager_Store(t *testing.T) {
	t.Parallel()

	t.Run("deleted session", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		sess := newSession(t)
		sess.Logout()
		store.On("Delete", mock.Anything, sess.ID).Return(session.ErrNotFound)

		err := session.NewManager[testData](store).Store(context.Background(), sess)
		assert.ErrorIs(t, err, session.ErrNotAuthenticated)
		store.AssertExpectations(t)
	})

	t.Run("unmodified session within touch interval is not saved", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := session.NewMemoryStore[testData]()
		m := session.NewManager[testData](store)

		sess, err := m.New(ctx)
		require.NoError(t, err)
		require.NoError(t, m.Store(ctx, sess))

		loaded, err := m.GetByID(ctx, sess.ID)
		require.NoError(t, err)
		assert.False(t, loaded.IsModified())

		mockS := &mockStore{}
		require.NoError(t, session.NewManager[testData](mockS).Store(ctx, loaded))
		mockS.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("save failure", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		store.On("Save", mock.Anything, mock.Anything).Return(errors.New("boom"))

		err := session.NewManager[testData](store).Store(context.Background(), newSession(t))
		assert.ErrorIs(t, err, session.ErrSave)
	})
}

func TestManager_CleanupExpired(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	store.On("DeleteExpired", mock.Anything).Return(int64(3), nil)

	n, err := session.NewManager[testData](store).CleanupExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

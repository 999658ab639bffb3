package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Manager applies expiry and persistence rules on top of a Store.
type Manager[Data any] struct {
	store         Store[Data]
	ttl           time.Duration
	touchInterval time.Duration
}

func NewManager[Data any](store Store[Data], opts ...Option) *Manager[Data] {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Manager[Data]{
		store:         store,
		ttl:           cfg.TTL,
		touchInterval: cfg.TouchInterval,
	}
}

// New creates an anonymous session. It is persisted by the first Store call.
func (m *Manager[Data]) New(_ context.Context) (Session[Data], error) {
	return New[Data](m.ttl)
}

// GetByID returns ErrExpired for sessions the store has not swept yet.
func (m *Manager[Data]) GetByID(ctx context.Context, id uuid.UUID) (Session[Data], error) {
	return live(m.store.GetByID(ctx, id))
}

func (m *Manager[Data]) GetByToken(ctx context.Context, token string) (Session[Data], error) {
	return live(m.store.GetByToken(ctx, token))
}

func live[Data any](sess *Session[Data], err error) (Session[Data], error) {
	switch {
	case err != nil:
		return Session[Data]{}, err
	case sess.IsExpired():
		return Session[Data]{}, ErrExpired
	}
	return *sess, nil
}

// Authenticate binds sess to userID, rotates its token and persists it.
func (m *Manager[Data]) Authenticate(ctx context.Context, sess Session[Data], userID uuid.UUID) (Session[Data], error) {
	if err := sess.Authenticate(userID); err != nil {
		return Session[Data]{}, err
	}
	if err := m.store.Save(ctx, &sess); err != nil {
		return Session[Data]{}, errors.Join(ErrSave, err)
	}
	return sess, nil
}

// Logout deletes sess and returns a fresh anonymous session in its place.
func (m *Manager[Data]) Logout(ctx context.Context, sess Session[Data]) (Session[Data], error) {
	if err := m.Delete(ctx, sess.ID); err != nil {
		return Session[Data]{}, err
	}

	anon, err := m.New(ctx)
	if err != nil {
		return Session[Data]{}, err
	}
	if err := m.store.Save(ctx, &anon); err != nil {
		return Session[Data]{}, errors.Join(ErrSave, err)
	}
	return anon, nil
}

// Delete removes a session. Missing sessions are not an error.
func (m *Manager[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return errors.Join(ErrDelete, err)
	}
	return nil
}

// Store persists sess if it changed or is due for a touch. A session marked
// by Logout is deleted instead and ErrNotAuthenticated is returned.
func (m *Manager[Data]) Store(ctx context.Context, sess Session[Data]) error {
	if sess.IsDeleted() {
		if err := m.Delete(ctx, sess.ID); err != nil {
			return err
		}
		return ErrNotAuthenticated
	}

	sess.Touch(m.ttl, m.touchInterval)

	if sess.IsModified() {
		if err := m.store.Save(ctx, &sess); err != nil {
			return errors.Join(ErrSave, err)
		}
	}

	return nil
}

// CleanupExpired is meant to run on a ticker.
func (m *Manager[Data]) CleanupExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx)
}

func (m *Manager[Data]) TTL() time.Duration {
	return m.ttl
}

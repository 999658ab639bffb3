package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("session: not found")
	ErrExpired         = errors.New("session: expired")
	ErrTokenGeneration = errors.New("session: generate token")
	ErrSave            = errors.New("session: save")
	ErrDelete          = errors.New("session: delete")

	// ErrNotAuthenticated tells the transport that the session is gone and
	// its token must be removed from the client.
	ErrNotAuthenticated = errors.New("session: not authenticated")
)

// Store persists sessions. Lookups return ErrNotFound for unknown IDs or
// tokens. Save replaces the session by ID and must drop the index of a
// previous token.
type Store[Data any] interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Session[Data], error)
	GetByToken(ctx context.Context, token string) (*Session[Data], error)
	Save(ctx context.Context, sess *Session[Data]) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteExpired reports how many sessions it removed. Stores with native
	// expiry may return 0.
	DeleteExpired(ctx context.Context) (int64, error)
}

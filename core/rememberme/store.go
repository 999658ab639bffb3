package rememberme

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the persistence contract for remember-me records.
// Implementations must be safe for concurrent use and must keep the series unique.
type Store interface {
	// FindBySeries returns the record for series or ErrNotFound.
	FindBySeries(ctx context.Context, series string) (Record, error)
	// Save inserts or updates rec atomically. CreatedAt is set on first insert,
	// UpdatedAt on every call, and both are written back into rec.
	// Saving a persisted record that no longer exists returns ErrNotFound
	// instead of recreating it.
	Save(ctx context.Context, rec *Record) error
	// DeleteBySeries removes one chain. Missing series are not an error.
	DeleteBySeries(ctx context.Context, series string) error
	// DeleteAllByUser removes every chain of the user and returns the count removed.
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	// SweepExpired removes records with ExpiresAt before now and returns the count removed.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

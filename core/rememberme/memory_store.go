package rememberme

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store in process memory.
// Suitable for tests and single-instance deployments; records do not survive restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	byUser  map[uuid.UUID]map[string]struct{}
	now     func() time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithMemoryStoreClock sets the clock used for CreatedAt/UpdatedAt.
func WithMemoryStoreClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		records: make(map[string]Record),
		byUser:  make(map[uuid.UUID]map[string]struct{}),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(ms)
	}

	return ms
}

// FindBySeries returns a copy of the stored record.
func (ms *MemoryStore) FindBySeries(ctx context.Context, series string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	rec, ok := ms.records[series]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Save upserts rec under a single lock so readers never see a partial update.
func (ms *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	existing, exists := ms.records[rec.Series]

	switch {
	case exists:
		rec.CreatedAt = existing.CreatedAt
		rec.UserID = existing.UserID
	case rec.IsPersisted():
		// Deleted concurrently (logout, theft wipe or sweep).
		return ErrNotFound
	default:
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	ms.records[rec.Series] = *rec

	set, ok := ms.byUser[rec.UserID]
	if !ok {
		set = make(map[string]struct{})
		ms.byUser[rec.UserID] = set
	}
	set[rec.Series] = struct{}{}

	return nil
}

// DeleteBySeries removes the record if present.
func (ms *MemoryStore) DeleteBySeries(ctx context.Context, series string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.deleteLocked(series)
	return nil
}

// DeleteAllByUser removes every record owned by userID.
func (ms *MemoryStore) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	var n int64
	for series := range ms.byUser[userID] {
		if _, ok := ms.records[series]; ok {
			delete(ms.records, series)
			n++
		}
	}
	delete(ms.byUser, userID)

	return n, nil
}

// SweepExpired removes records that expired before now.
func (ms *MemoryStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	var n int64
	for series, rec := range ms.records {
		if rec.IsExpired(now) {
			ms.deleteLocked(series)
			n++
		}
	}

	return n, nil
}

// Len returns the number of stored records.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.records)
}

// CountByUser returns the number of records owned by userID.
func (ms *MemoryStore) CountByUser(userID uuid.UUID) int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.byUser[userID])
}

func (ms *MemoryStore) deleteLocked(series string) {
	rec, ok := ms.records[series]
	if !ok {
		return
	}
	delete(ms.records, series)

	if set, ok := ms.byUser[rec.UserID]; ok {
		delete(set, series)
		if len(set) == 0 {
			delete(ms.byUser, rec.UserID)
		}
	}
}

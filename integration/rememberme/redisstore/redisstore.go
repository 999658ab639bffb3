// Package redisstore persists remember-me records in Redis.
//
// Each chain is a hash under <prefix>series:<series>. A set per user
// (<prefix>user:<id>) lists the user's series and a sorted set
// (<prefix>expiry) orders series by expiry for sweeping. Writes touching
// more than one key run as Lua scripts, so they are atomic. The default
// prefix carries a hash tag, which keeps all keys in one cluster slot.
package redisstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/rememberme/core/rememberme"
)

// DefaultPrefix is prepended to every key.
const DefaultPrefix = "{rememberme}:"

// keyGrace keeps a chain's hash around for a while after it expired, so the
// sweep can still unlink it from the user set. Redis removes it afterwards
// if no sweep ran.
const keyGrace = 24 * time.Hour

var saveScript = redis.NewScript(`
local exists = redis.call('EXISTS', KEYS[1]) == 1
if not exists and ARGV[6] == '1' then
	return false
end
local created = ARGV[4]
local user = ARGV[3]
if exists then
	created = redis.call('HGET', KEYS[1], 'created')
	user = redis.call('HGET', KEYS[1], 'user_id')
else
	redis.call('HSET', KEYS[1], 'series', ARGV[1], 'user_id', user, 'created', created)
	redis.call('SADD', KEYS[2], ARGV[1])
end
redis.call('HSET', KEYS[1], 'token', ARGV[2], 'modified', ARGV[4], 'expires', ARGV[5])
redis.call('PEXPIREAT', KEYS[1], ARGV[7])
redis.call('ZADD', KEYS[3], ARGV[5], ARGV[1])
return {created, user}
`)

var deleteSeriesScript = redis.NewScript(`
local user = redis.call('HGET', KEYS[1], 'user_id')
if user then
	redis.call('SREM', ARGV[2] .. user, ARGV[1])
end
redis.call('ZREM', KEYS[2], ARGV[1])
return redis.call('DEL', KEYS[1])
`)

var deleteUserScript = redis.NewScript(`
local members = redis.call('SMEMBERS', KEYS[1])
local n = 0
for _, series in ipairs(members) do
	n = n + redis.call('DEL', ARGV[1] .. series)
	redis.call('ZREM', KEYS[2], series)
end
redis.call('DEL', KEYS[1])
return n
`)

var sweepScript = redis.NewScript(`
local expired = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', '(' .. ARGV[1])
local n = 0
for _, series in ipairs(expired) do
	local key = ARGV[2] .. series
	local user = redis.call('HGET', key, 'user_id')
	if user then
		redis.call('SREM', ARGV[3] .. user, series)
	end
	n = n + redis.call('DEL', key)
	redis.call('ZREM', KEYS[1], series)
end
return n
`)

// Store implements rememberme.Store on Redis.
type Store struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ rememberme.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithClock sets the clock used for created/modified timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a store using client.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) seriesPrefix() string { return s.prefix + "series:" }
func (s *Store) userPrefix() string { return s.prefix + "user:" }
func (s *Store) seriesKey(series string) string { return s.seriesPrefix() + series }
func (s *Store) userKey(id uuid.UUID) string { return s.userPrefix() + id.String() }
func (s *Store) expiryKey() string { return s.prefix + "expiry" }

// FindBySeries loads the record for series.
func (s *Store) FindBySeries(ctx context.Context, series string) (rememberme.Record, error) {
	fields, err := s.client.HGetAll(ctx, s.seriesKey(series)).Result()
	if err != nil {
		return rememberme.Record{}, err
	}
	if len(fields) == 0 {
		return rememberme.Record{}, rememberme.ErrNotFound
	}
	return decode(fields)
}

// Save inserts a new record or rotates a persisted one in one script call.
// A persisted record whose hash is gone is reported as rememberme.ErrNotFound.
func (s *Store) Save(ctx context.Context, rec *rememberme.Record) error {
	now := s.now()
	persisted := "0"
	if rec.IsPersisted() {
		persisted = "1"
	}

	res, err := saveScript.Run(ctx, s.client,
		[]string{s.seriesKey(rec.Series), s.userKey(rec.UserID), s.expiryKey()},
		rec.Series,
		rec.TokenHash,
		rec.UserID.String(),
		now.UnixMilli(),
		rec.ExpiresAt.UnixMilli(),
		persisted,
		rec.ExpiresAt.Add(keyGrace).UnixMilli(),
	).StringSlice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return rememberme.ErrNotFound
		}
		return err
	}
	if len(res) != 2 {
		return errors.New("redisstore: unexpected save reply")
	}

	created, err := parseMillis(res[0])
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(res[1])
	if err != nil {
		return err
	}

	rec.CreatedAt = created
	rec.UpdatedAt = time.UnixMilli(now.UnixMilli())
	rec.UserID = userID
	return nil
}

// DeleteBySeries removes one chain.
func (s *Store) DeleteBySeries(ctx context.Context, series string) error {
	return deleteSeriesScript.Run(ctx, s.client,
		[]string{s.seriesKey(series), s.expiryKey()},
		series, s.userPrefix(),
	).Err()
}

// DeleteAllByUser removes every chain of userID.
func (s *Store) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return deleteUserScript.Run(ctx, s.client,
		[]string{s.userKey(userID), s.expiryKey()},
		s.seriesPrefix(),
	).Int64()
}

// SweepExpired removes records that expired before now.
func (s *Store) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	return sweepScript.Run(ctx, s.client,
		[]string{s.expiryKey()},
		now.UnixMilli(), s.seriesPrefix(), s.userPrefix(),
	).Int64()
}

func decode(fields map[string]string) (rememberme.Record, error) {
	userID, err := uuid.Parse(fields["user_id"])
	if err != nil {
		return rememberme.Record{}, err
	}
	created, err := parseMillis(fields["created"])
	if err != nil {
		return rememberme.Record{}, err
	}
	modified, err := parseMillis(fields["modified"])
	if err != nil {
		return rememberme.Record{}, err
	}
	expires, err := parseMillis(fields["expires"])
	if err != nil {
		return rememberme.Record{}, err
	}

	return rememberme.Record{
		Series:    fields["series"],
		TokenHash: fields["token"],
		UserID:    userID,
		CreatedAt: created,
		UpdatedAt: modified,
		ExpiresAt: expires,
	}, nil
}

func parseMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}

// Package redisstore keeps sessions in Redis so several server instances
// share them.
//
// A session is a hash under <prefix>session:<id> holding its JSON encoding
// and current token. <prefix>token:<token> points back to the id. Both keys
// expire with the session, so DeleteExpired has nothing left to do.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/rememberme/core/session"
)

// DefaultPrefix is prepended to every key.
const DefaultPrefix = "{session}:"

var saveScript = redis.NewScript(`
local old = redis.call('HGET', KEYS[1], 'token')
if old and old ~= ARGV[2] then
	redis.call('DEL', ARGV[5] .. old)
end
redis.call('HSET', KEYS[1], 'data', ARGV[1], 'token', ARGV[2])
redis.call('PEXPIREAT', KEYS[1], ARGV[3])
redis.call('SET', KEYS[2], ARGV[4])
redis.call('PEXPIREAT', KEYS[2], ARGV[3])
return 1
`)

var deleteScript = redis.NewScript(`
local token = redis.call('HGET', KEYS[1], 'token')
if not token then
	return 0
end
redis.call('DEL', ARGV[1] .. token)
return redis.call('DEL', KEYS[1])
`)

// Store implements session.Store on Redis. Data must be JSON-encodable.
type Store[Data any] struct {
	client redis.UniversalClient
	prefix string
}

var _ session.Store[struct{}] = (*Store[struct{}])(nil)

// Option configures a Store.
type Option func(*options)

type options struct {
	prefix string
}

// WithPrefix replaces DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// New creates a session store on client.
func New[Data any](client redis.UniversalClient, opts ...Option) *Store[Data] {
	o := options{prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[Data]{client: client, prefix: o.prefix}
}

func (s *Store[Data]) sessionKey(id uuid.UUID) string { return s.prefix + "session:" + id.String() }
func (s *Store[Data]) tokenPrefix() string           { return s.prefix + "token:" }

// GetByID loads a session by its stable id.
func (s *Store[Data]) GetByID(ctx context.Context, id uuid.UUID) (*session.Session[Data], error) {
	raw, err := s.client.HGet(ctx, s.sessionKey(id), "data").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}

	var sess session.Session[Data]
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// GetByToken loads the session currently owning token.
func (s *Store[Data]) GetByToken(ctx context.Context, token string) (*session.Session[Data], error) {
	raw, err := s.client.Get(ctx, s.tokenPrefix()+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Save upserts the session and moves the token index when the token rotated.
func (s *Store[Data]) Save(ctx context.Context, sess *session.Session[Data]) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	keys := []string{s.sessionKey(sess.ID), s.tokenPrefix() + sess.Token}
	args := []any{
		data,
		sess.Token,
		strconv.FormatInt(sess.ExpiresAt.UnixMilli(), 10),
		sess.ID.String(),
		s.tokenPrefix(),
	}
	return saveScript.Run(ctx, s.client, keys, args...).Err()
}

// Delete removes the session and its token index.
func (s *Store[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := deleteScript.Run(ctx, s.client, []string{s.sessionKey(id)}, s.tokenPrefix()).Int64()
	if err != nil {
		return err
	}
	if n == 0 {
		return session.ErrNotFound
	}
	return nil
}

// DeleteExpired is a no-op: Redis expires session keys on its own.
func (s *Store[Data]) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}

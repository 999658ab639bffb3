package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/rememberme/core/health"
	"github.com/dmitrymomot/rememberme/core/rememberme"
	"github.com/dmitrymomot/rememberme/core/session"
	"github.com/dmitrymomot/rememberme/integration/database/mongo"
	"github.com/dmitrymomot/rememberme/integration/database/pg"
	redisdb "github.com/dmitrymomot/rememberme/integration/database/redis"
	"github.com/dmitrymomot/rememberme/integration/rememberme/mongostore"
	"github.com/dmitrymomot/rememberme/integration/rememberme/pgstore"
	"github.com/dmitrymomot/rememberme/integration/rememberme/redisstore"
	sessionredis "github.com/dmitrymomot/rememberme/integration/session/redisstore"
	"github.com/dmitrymomot/rememberme/internal/users"
)

// Deps are the connected backends. Only those named by the config are needed.
type Deps struct {
	Postgres *pgxpool.Pool
	Redis    redis.UniversalClient
	Mongo    *mongodriver.Database
}

func (d Deps) checks() []health.Check {
	var checks []health.Check
	if d.Postgres != nil {
		checks = append(checks, health.Check{Name: StorePostgres, Fn: pg.Healthcheck(d.Postgres)})
	}
	if d.Redis != nil {
		checks = append(checks, health.Check{Name: StoreRedis, Fn: redisdb.Healthcheck(d.Redis)})
	}
	if d.Mongo != nil {
		checks = append(checks, health.Check{Name: StoreMongo, Fn: mongo.Healthcheck(d.Mongo.Client())})
	}
	return checks
}

func newTokenStore(ctx context.Context, kind string, deps Deps) (rememberme.Store, error) {
	switch kind {
	case "", StoreMemory:
		return rememberme.NewMemoryStore(), nil
	case StorePostgres:
		if deps.Postgres == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingBackend, kind)
		}
		return pgstore.New(deps.Postgres), nil
	case StoreRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingBackend, kind)
		}
		return redisstore.New(deps.Redis), nil
	case StoreMongo:
		if deps.Mongo == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingBackend, kind)
		}
		store := mongostore.New(deps.Mongo.Collection(mongostore.DefaultCollection))
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, kind)
	}
}

func newSessionStore(kind string, deps Deps) (session.Store[SessionData], error) {
	switch kind {
	case "", StoreMemory:
		return session.NewMemoryStore[SessionData](), nil
	case StoreRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingBackend, kind)
		}
		return sessionredis.New[SessionData](deps.Redis), nil
	default:
		return nil, fmt.Errorf("%w: session store %q", ErrUnknownStore, kind)
	}
}

// newUsers keeps users next to the tokens when both live in Postgres, so
// account deletion removes them in one transaction.
func newUsers(cfg Config, deps Deps, tokens rememberme.Store) *users.Service {
	opts := []users.Option{users.WithTokenRevoker(tokens)}
	if cfg.RememberMe.BcryptCost != 0 {
		opts = append(opts, users.WithBcryptCost(cfg.RememberMe.BcryptCost))
	}

	if cfg.RememberMe.Store == StorePostgres && deps.Postgres != nil {
		pool := deps.Postgres
		opts = append(opts, users.WithTx(func(ctx context.Context, fn func(context.Context) error) error {
			return pg.InTx(ctx, pool, fn)
		}))
		return users.NewService(users.NewPostgresRepository(pool), opts...)
	}
	return users.NewService(users.NewMemoryRepository(), opts...)
}

// Command server runs the remember-me demo application.
//
// Stores are chosen with REMEMBERME_STORE (memory, postgres, redis, mongo)
// and SESSION_STORE (memory, redis). Connection settings for a backend are
// only read when that backend is in use.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/rememberme/core/config"
	"github.com/dmitrymomot/rememberme/core/logger"
	"github.com/dmitrymomot/rememberme/integration/database/mongo"
	"github.com/dmitrymomot/rememberme/integration/database/pg"
	redisdb "github.com/dmitrymomot/rememberme/integration/database/redis"
	"github.com/dmitrymomot/rememberme/internal/app"
	"github.com/dmitrymomot/rememberme/internal/db/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg app.Config
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Logger)
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg app.Config, log *slog.Logger) error {
	var deps app.Deps

	if cfg.RememberMe.Store == app.StorePostgres {
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pg.MigrateFS(ctx, pool, migrations.FS, pgCfg, log); err != nil {
			return err
		}
		deps.Postgres = pool
	}

	if cfg.RememberMe.Store == app.StoreRedis || cfg.SessionStore == app.StoreRedis {
		var redisCfg redisdb.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		client, err := redisdb.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		deps.Redis = client
	}

	if cfg.RememberMe.Store == app.StoreMongo {
		var mongoCfg mongo.Config
		if err := config.Load(&mongoCfg); err != nil {
			return err
		}
		db, err := mongo.NewWithDatabase(ctx, mongoCfg)
		if err != nil {
			return err
		}
		defer func() { _ = db.Client().Disconnect(context.WithoutCancel(ctx)) }()
		deps.Mongo = db
	}

	a, err := app.New(ctx, cfg, log, deps)
	if err != nil {
		return err
	}

	log.Info("starting server",
		slog.String("addr", cfg.Server.Addr),
		slog.String("token_store", cfg.RememberMe.Store),
		slog.String("session_store", cfg.SessionStore),
	)
	return a.Run(ctx)
}

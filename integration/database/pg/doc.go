// Package pg connects to PostgreSQL through pgx and applies goose migrations.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.MigrateFS(ctx, pool, migrations.FS, cfg, log); err != nil {
//		return err
//	}
//
//	ready := health.Readiness[*router.Context](log, pg.Healthcheck(pool))
//
// Connect retries with exponential backoff so a service can start alongside
// its database. Migrate reads migrations from cfg.MigrationsPath; MigrateFS
// takes an fs.FS so migrations can be embedded in the binary.
//
// WithTx, TxFromContext and InTx propagate a transaction through the context
// so several repositories can write atomically:
//
//	err := pg.InTx(ctx, pool, func(ctx context.Context) error {
//		if _, err := tokens.DeleteAllByUser(ctx, id); err != nil {
//			return err
//		}
//		return users.Delete(ctx, id)
//	})
//
// IsNotFoundError, IsDuplicateKeyError, IsForeignKeyViolationError and
// IsTxClosedError classify driver errors.
package pg

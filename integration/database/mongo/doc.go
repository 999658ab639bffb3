// Package mongo creates MongoDB clients with connection retries and exposes a
// readiness check.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
//
//	tokens := mongostore.New(db.Collection("auth_tokens"))
//	ready := health.Readiness[*router.Context](log, mongo.Healthcheck(db.Client()))
//
// Environment variables (see Config): MONGODB_URL (required), MONGODB_DATABASE,
// MONGODB_CONNECT_TIMEOUT, MONGODB_MAX_POOL_SIZE, MONGODB_MIN_POOL_SIZE,
// MONGODB_MAX_CONN_IDLE_TIME, MONGODB_RETRY_WRITES, MONGODB_RETRY_READS,
// MONGODB_RETRY_ATTEMPTS and MONGODB_RETRY_INTERVAL.
package mongo

// Package server runs an http.Handler with graceful shutdown.
//
//	cfg := server.DefaultConfig()
//	_ = config.Load(&cfg)
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, router))
//	return g.Wait()
//
// Start binds the listener before serving, so Addr reports the real port
// when the configured address ends in ":0". TLS is enabled by
// SERVER_TLS_CERT_FILE and SERVER_TLS_KEY_FILE or by WithTLS.
package server

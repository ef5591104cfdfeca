// Package server wraps the standard http.Server with graceful shutdown and
// functional options. It is the serving side of the certificate pipeline:
// the manager produces a *tls.Config and this package serves HTTPS with it,
// or plaintext HTTP when no TLS configuration is supplied.
//
//	srv := server.New(":8443",
//		server.WithTLS(tlsConfig),
//		server.WithLogger(log),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := srv.Start(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
//		log.Error("server failed", logger.Error(err))
//	}
//	_ = srv.Stop()
//
// Start blocks until the context is canceled or the listener fails; Run
// returns an errgroup-compatible closure for coordinated lifecycles.
package server

// Package httpserver runs the storefront's HTTP handler with graceful
// shutdown.
//
// Long-lived datastar streams keep their connections open, so the server
// derives every request context from a base context that is cancelled as
// soon as shutdown begins. Streams observe ctx.Done, flush their last
// events and return, which lets http.Server.Shutdown finish within
// ShutdownTimeout. Cleanup hooks registered with WithShutdownHook run after
// the listener has stopped.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithShutdownHook(func(context.Context) error { return guard.Close() }),
//	)
//	err := srv.Run(ctx, router)
package httpserver

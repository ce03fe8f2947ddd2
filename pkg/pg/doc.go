// Package pg opens the PostgreSQL pool that backs provider profiles and
// applies the embedded goose migrations before the server starts.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil { ... }
//	if err := pg.Migrate(ctx, pool, cfg, migrations.FS, log); err != nil { ... }
//
// Connect retries with a linear back-off and gives up early when ctx is
// cancelled. Healthcheck returns a probe suitable for the readiness endpoint.
package pg

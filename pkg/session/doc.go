// Package session manages storefront browser sessions and publishes their
// authentication transitions.
//
// A Manager owns the session life-cycle. A Transport (signed, encrypted
// cookie by default) carries the opaque token; a Store persists session
// state (MemoryStore for development, RedisStore in production). Every
// transition that changes who the visitor is emits an Event on the
// manager's broadcaster:
//
//	Authenticate -> signed_in
//	SignOut      -> signed_out (session kept, now anonymous)
//	Destroy      -> signed_out (session removed)
//	Refresh      -> token_refreshed
//
// Manager.Source adapts one browser session to authstate.SessionSource, so
// every open tab of that browser learns about a sign-in or sign-out made in
// another tab. Authenticate and SignOut rotate the token; the source follows
// the rotation through the events it receives.
//
//	mgr := session.New(
//	    session.WithCookieManager(cookies),
//	    session.WithStore(session.NewRedisStore(client)),
//	)
//	defer mgr.Close()
//
//	r.Use(mgr.Middleware)
//	r.With(guard.Middleware(mgr.Resolve)).Get("/dashboard", dashboard)
package session

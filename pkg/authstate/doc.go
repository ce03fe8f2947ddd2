// Package authstate holds the authentication state of one browser tab.
//
// A Store is fed by two producers of a SessionSource: the one-shot
// GetSession check issued on first use, and the push stream of session
// changes (sign-in, sign-out, token refresh). Each write replaces the
// current Status with the value derived from its own payload; nothing is
// merged, so whichever write arrives last wins. Writes are serialized by the
// store and listeners observe them in write order.
//
// Status starts as Unknown. Once either producer has written, Unknown is
// never observed again for the store's lifetime. A failed or timed-out
// one-shot check is written as Unauthenticated.
//
//	store := authstate.NewStore(source, authstate.WithLogger(log))
//	defer store.Close()
//
//	unsubscribe := store.Subscribe(func(c authstate.Change) {
//	    log.Info("auth changed", logger.Status(c.Status))
//	})
//	defer unsubscribe()
//
//	<-store.Ready()
//	if store.Status().IsAuthenticated() { ... }
package authstate

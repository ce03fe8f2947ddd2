// Package async runs a function on its own goroutine and hands back a Future
// for its result. The onboarding router uses it to bound profile lookups:
// the lookup keeps running after a timeout (lookups are read-only), the caller
// just stops waiting for it.
//
//	f := async.Async(ctx, userID, lookup)
//	profile, err := f.AwaitWithTimeout(3 * time.Second)
//	if errors.Is(err, async.ErrTimeout) { ... }
package async

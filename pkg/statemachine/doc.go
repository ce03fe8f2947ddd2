// Package statemachine is a small finite-state machine used to model the
// lifecycle of a guarded route mount (loading, allowed, denied).
//
// Transitions are declared up front with WithTransition. Fire looks up the
// transition for the current state and event, evaluates its guards, runs its
// actions and then switches state. Actions run while the machine is locked,
// so they must not call back into the same machine; side effects that reach
// other components belong after Fire returns.
//
//	sm := statemachine.MustNew(Loading,
//	    statemachine.WithTransition(Loading, Allowed, Authenticated),
//	    statemachine.WithTransition(Loading, Denied, Unauthenticated),
//	)
//	if err := sm.Fire(ctx, Authenticated, nil); err != nil { ... }
package statemachine

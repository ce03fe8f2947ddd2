// Package navguard gates protected content on the authentication status of
// the visitor.
//
// Two entry points exist. Middleware guards a page load: it resolves the
// session once, within a timeout, and either lets the request through with
// the status in the context or redirects to sign-in with a flash notice.
// Mount guards a long-lived tab: it follows an authstate.Store and moves
// between three states.
//
//	loading  --check resolves authenticated-->    allowed
//	loading  --check resolves unauthenticated-->  denied
//	allowed  --sign-out-->                        denied
//	denied   --sign-in-->                         allowed
//
// Push events that arrive while loading do not decide anything; the first
// decision is taken from the store's latest status when the one-shot check
// resolves. Entering denied navigates to sign-in with the mount path as the
// return path and queues an "authentication required" notice on the guard's
// Queue, never inline.
package navguard

package authstate

import "errors"

// ErrSessionCheckTimeout is logged when the one-shot check does not resolve
// within the configured timeout. The store then writes Unauthenticated.
var ErrSessionCheckTimeout = errors.New("authstate: session check timed out")

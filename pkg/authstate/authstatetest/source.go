// Package authstatetest provides a scriptable authstate.SessionSource for
// tests of components that consume an authstate.Store.
package authstatetest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/storefront/pkg/authstate"
)

type checkResult struct {
	session *authstate.Session
	err     error
}

// Source is a SessionSource driven by the test. GetSession blocks until
// Resolve is called; Emit delivers push events synchronously.
type Source struct {
	mu        sync.Mutex
	listeners map[int]func(authstate.Event)
	nextID    int

	results chan checkResult
	calls   atomic.Int32
}

func NewSource() *Source {
	return &Source{
		listeners: make(map[int]func(authstate.Event)),
		results:   make(chan checkResult, 1),
	}
}

// GetSession waits for Resolve or ctx cancellation.
func (s *Source) GetSession(ctx context.Context) (*authstate.Session, error) {
	s.calls.Add(1)
	select {
	case r := <-s.results:
		return r.session, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Source) OnAuthStateChange(fn func(authstate.Event)) authstate.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return authstate.SubscriptionFunc(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	})
}

// Resolve completes the pending (or next) GetSession call.
func (s *Source) Resolve(session *authstate.Session, err error) {
	s.results <- checkResult{session: session, err: err}
}

// Emit delivers a push event to every listener before returning.
func (s *Source) Emit(typ authstate.EventType, session *authstate.Session) {
	s.mu.Lock()
	fns := make([]func(authstate.Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(authstate.Event{Type: typ, Session: session})
	}
}

// SignIn emits a signed_in event for userID.
func (s *Source) SignIn(userID string) {
	s.Emit(authstate.EventSignedIn, SessionFor(userID))
}

// SignOut emits a signed_out event.
func (s *Source) SignOut() {
	s.Emit(authstate.EventSignedOut, nil)
}

// Listeners returns the number of active push subscriptions.
func (s *Source) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Calls returns how many times GetSession was called.
func (s *Source) Calls() int {
	return int(s.calls.Load())
}

// SessionFor builds a session for userID.
func SessionFor(userID string) *authstate.Session {
	return &authstate.Session{ID: "sess-" + userID, UserID: userID, Token: "token-" + userID}
}

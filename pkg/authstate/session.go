package authstate

import (
	"context"
	"time"
)

// Session is the slice of a backend session the storefront consumes.
// The token is opaque and only carried through.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// IsExpired reports whether the session carries an expiry in the past.
func (s *Session) IsExpired() bool {
	return s != nil && !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// EventType names a session transition reported by a SessionSource.
type EventType string

const (
	// EventInitialSession marks the write made by the one-shot check.
	EventInitialSession EventType = "initial_session"
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventTokenRefreshed EventType = "token_refreshed"
	EventUserUpdated    EventType = "user_updated"
)

// Event is a push notification from a SessionSource. Session is nil when
// no session exists after the transition.
type Event struct {
	Type    EventType
	Session *Session
}

// Subscription is returned by OnAuthStateChange.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a function to Subscription.
type SubscriptionFunc func()

func (f SubscriptionFunc) Unsubscribe() { f() }

// SessionSource is the authentication backend.
type SessionSource interface {
	// GetSession returns the current session, or nil when signed out.
	GetSession(ctx context.Context) (*Session, error)

	// OnAuthStateChange registers listener for every later session
	// transition until the subscription is cancelled.
	OnAuthStateChange(listener func(Event)) Subscription
}

package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/storefront/pkg/authstate"
	"github.com/dmitrymomot/storefront/pkg/broadcast"
	"github.com/dmitrymomot/storefront/pkg/logger"
)

// Source follows one browser session for an authstate.Store. It survives
// token rotation: the token it resolves with is updated from the events of
// its session.
type Source struct {
	m  *Manager
	id uuid.UUID

	mu    sync.Mutex
	token string
	// user is the user of the last session read or delivered.
	user string
}

// resyncTimeout bounds the session read after a dropped subscription.
const resyncTimeout = 5 * time.Second

var _ authstate.SessionSource = (*Source)(nil)

// Source returns a source for the session of r, preferring one already
// loaded into the request context.
func (m *Manager) Source(r *http.Request) (*Source, error) {
	if session, ok := FromContext(r.Context()); ok && session != nil {
		return m.SourceFor(session), nil
	}
	session, err := m.Get(r.Context(), r)
	if err != nil {
		return nil, err
	}
	return m.SourceFor(session), nil
}

// SourceFor returns a source for session.
func (m *Manager) SourceFor(session *Session) *Source {
	return &Source{m: m, id: session.ID, token: session.Token}
}

// SessionID returns the followed session.
func (s *Source) SessionID() uuid.UUID {
	return s.id
}

// GetSession implements authstate.SessionSource. A removed or expired
// session resolves to nil.
func (s *Source) GetSession(ctx context.Context) (*authstate.Session, error) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	session, err := s.m.store.Get(ctx, token)
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionExpired):
		return nil, nil
	case err != nil:
		return nil, errors.Join(ErrStoreFailure, err)
	case session.ID != s.id:
		return nil, nil
	}

	s.mu.Lock()
	s.user = session.UserID
	s.mu.Unlock()
	return session.AuthSession(), nil
}

// OnAuthStateChange implements authstate.SessionSource. Events are delivered
// on a dedicated goroutine in publication order. A subscription dropped for
// falling behind is renewed and the listener receives the session as read
// after renewal, so no transition is lost.
func (s *Source) OnAuthStateChange(listener func(authstate.Event)) authstate.Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	sub := s.m.Subscribe(ctx, s.id)

	go func() {
		for {
			s.follow(ctx, sub, listener)
			if ctx.Err() != nil || s.m.events.Closed() {
				return
			}

			s.m.logger.LogAttrs(ctx, slog.LevelWarn, "session events fell behind, resyncing",
				logger.Component("session"),
				slog.String("session_id", s.id.String()),
			)
			_ = sub.Close()
			// Subscribe before reading so a transition in between is not lost.
			sub = s.m.Subscribe(ctx, s.id)
			s.resync(ctx, listener)
		}
	}()

	return authstate.SubscriptionFunc(cancel)
}

// follow delivers events until sub ends.
func (s *Source) follow(ctx context.Context, sub broadcast.Subscriber[Event], listener func(authstate.Event)) {
	for msg := range sub.Receive(ctx) {
		e := msg.Data
		if e.SessionID != s.id {
			continue
		}
		next := e.Session.AuthSession()

		s.mu.Lock()
		if e.Session != nil {
			s.token = e.Session.Token
		}
		s.user = userOf(next)
		s.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		listener(authstate.Event{Type: e.Type, Session: next})
	}
}

// resync reports the current session as the transition from the last
// delivered user. A failed read reports a sign-out.
func (s *Source) resync(ctx context.Context, listener func(authstate.Event)) {
	s.mu.Lock()
	prev := s.user
	s.mu.Unlock()

	readCtx, cancel := context.WithTimeout(ctx, resyncTimeout)
	defer cancel()
	current, err := s.GetSession(readCtx)
	if ctx.Err() != nil {
		return
	}

	e := authstate.Event{Type: authstate.EventTokenRefreshed, Session: current}
	switch user := userOf(current); {
	case err != nil:
		s.m.logger.LogAttrs(ctx, slog.LevelWarn, "session resync failed, treating visitor as signed out",
			logger.Component("session"),
			logger.Error(err),
		)
		e = authstate.Event{Type: authstate.EventSignedOut}
	case user == prev:
	case user == "":
		e.Type = authstate.EventSignedOut
	default:
		e.Type = authstate.EventSignedIn
	}

	s.mu.Lock()
	s.user = userOf(e.Session)
	s.mu.Unlock()

	listener(e)
}

func userOf(s *authstate.Session) string {
	if s == nil {
		return ""
	}
	return s.UserID
}

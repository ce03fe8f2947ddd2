package session

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/storefront/pkg/authstate"
	"github.com/dmitrymomot/storefront/pkg/broadcast"
	"github.com/dmitrymomot/storefront/pkg/logger"
)

// Event is an authentication transition of one session. Session is the
// state after the transition, nil when the session was removed.
type Event struct {
	Type      authstate.EventType
	SessionID uuid.UUID
	Session   *Session
}

// Subscribe returns a subscriber for the events of session id. It ends when
// ctx is cancelled, or early when the subscriber falls EventBuffer events
// behind.
func (m *Manager) Subscribe(ctx context.Context, id uuid.UUID) broadcast.Subscriber[Event] {
	return m.events.Subscribe(ctx, id.String())
}

func (m *Manager) publish(ctx context.Context, typ authstate.EventType, id uuid.UUID, s *Session) {
	_ = m.events.Publish(ctx, id.String(), broadcast.Message[Event]{Data: Event{
		Type:      typ,
		SessionID: id,
		Session:   s.clone(),
	}})

	m.logger.LogAttrs(ctx, slog.LevelDebug, "session event",
		logger.Component("session"),
		logger.Event(string(typ)),
		slog.String("session_id", id.String()),
	)
}

package navguard

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/storefront/pkg/authstate"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/redirect"
	"github.com/dmitrymomot/storefront/pkg/statemachine"
)

// Mount states.
const (
	StateLoading = statemachine.StringState("loading")
	StateAllowed = statemachine.StringState("allowed")
	StateDenied  = statemachine.StringState("denied")
)

const (
	eventAllow = statemachine.StringEvent("allow")
	eventDeny  = statemachine.StringEvent("deny")
)

// newMachine builds the mount lifecycle. Events carry the store status as
// data: allowing needs an authenticated status, and entering denied queues
// the sign-in redirect to run once m.mu is released.
func (m *Mount) newMachine() statemachine.StateMachine {
	authenticated := statemachine.WithGuard(func(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
		status, ok := data.(authstate.Status)
		return ok && status.IsAuthenticated()
	})
	deny := statemachine.WithAction(func(context.Context, statemachine.State, statemachine.State, statemachine.Event, any) error {
		m.effects = append(m.effects, m.onDenied)
		return nil
	})

	return statemachine.MustNew(StateLoading,
		statemachine.WithTransition(StateLoading, StateAllowed, eventAllow, authenticated),
		statemachine.WithTransition(StateLoading, StateDenied, eventDeny, deny),
		statemachine.WithTransition(StateAllowed, StateDenied, eventDeny, deny),
		statemachine.WithTransition(StateDenied, StateAllowed, eventAllow, authenticated),
	)
}

// Mount guards one protected view for the lifetime of a tab.
type Mount struct {
	guard *Guard
	store *authstate.Store
	path  string
	nav   redirect.Navigator
	ctx   context.Context

	mu        sync.Mutex
	sm        statemachine.StateMachine
	effects   []func()
	lastSeq   uint64
	unmounted bool
	unsub     func()
	stop      chan struct{}
	stopOnce  sync.Once
}

// Mount starts guarding path against store. Navigations go through nav.
// The mount ends on Unmount or when ctx is done.
func (g *Guard) Mount(ctx context.Context, store *authstate.Store, path string, nav redirect.Navigator) *Mount {
	if nav == nil {
		nav = redirect.Discard
	}

	m := &Mount{
		guard: g,
		store: store,
		path:  path,
		nav:   nav,
		ctx:   ctx,
		stop:  make(chan struct{}),
	}
	m.sm = m.newMachine()

	unsub := store.Subscribe(m.onChange)
	m.mu.Lock()
	m.unsub = unsub
	m.mu.Unlock()

	go m.awaitReady()

	return m
}

// State returns the current mount state.
func (m *Mount) State() statemachine.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sm.Current()
}

// Allowed reports whether protected content may be shown.
func (m *Mount) Allowed() bool {
	return m.State() == StateAllowed && m.store.Status().IsAuthenticated()
}

// Render wraps children: the placeholder while loading, nothing while
// denied, children only while allowed and authenticated.
func (m *Mount) Render(children templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		switch m.State() {
		case StateLoading:
			return m.guard.placeholder.Render(ctx, w)
		case StateAllowed:
			if children != nil && m.store.Status().IsAuthenticated() {
				return children.Render(ctx, w)
			}
		}
		return nil
	})
}

// Unmount stops the mount. Later store writes have no effect.
func (m *Mount) Unmount() {
	m.mu.Lock()
	m.unmounted = true
	unsub := m.unsub
	m.unsub = nil
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	m.stopOnce.Do(func() { close(m.stop) })
}

// Done is closed when the mount ends.
func (m *Mount) Done() <-chan struct{} {
	return m.stop
}

func (m *Mount) awaitReady() {
	select {
	case <-m.store.Ready():
	case <-m.stop:
		return
	case <-m.ctx.Done():
		m.Unmount()
		return
	}

	snap := m.store.Snapshot()
	m.decide(snap.Status, snap.Seq, true)
}

func (m *Mount) onChange(c authstate.Change) {
	m.decide(c.Status, c.Seq, c.Producer == authstate.ProducerCheck)
}

// decide applies a store write. Writes at or below the last applied
// sequence are stale. While loading only the check resolution decides.
func (m *Mount) decide(status authstate.Status, seq uint64, resolution bool) {
	m.mu.Lock()
	if m.unmounted || seq <= m.lastSeq {
		m.mu.Unlock()
		return
	}

	from := m.sm.Current()
	if from == StateLoading && !resolution {
		m.mu.Unlock()
		return
	}
	m.lastSeq = seq

	var event statemachine.Event
	switch {
	case status.IsAuthenticated():
		event = eventAllow
	case status.IsKnown():
		event = eventDeny
	default:
		m.mu.Unlock()
		return
	}

	err := m.sm.Fire(m.ctx, event, status)
	to := m.sm.Current()
	effects := m.effects
	m.effects = nil
	m.mu.Unlock()

	switch {
	case statemachine.IsNoTransitionAvailableError(err):
		// Already in the state this write asks for.
		return
	case statemachine.IsTransitionRejectedError(err):
		m.guard.logger.LogAttrs(m.ctx, slog.LevelDebug, "guard transition rejected",
			logger.Component("navguard"),
			logger.Path(m.path),
			logger.Status(status),
		)
		return
	case err != nil:
		m.guard.logger.LogAttrs(m.ctx, slog.LevelError, "guard transition failed",
			logger.Component("navguard"),
			logger.Path(m.path),
			logger.Error(err),
		)
		return
	}

	m.guard.logger.LogAttrs(m.ctx, slog.LevelDebug, "guard transition",
		logger.Component("navguard"),
		logger.Path(m.path),
		slog.String("from", from.Name()),
		slog.String("to", to.Name()),
		logger.Status(status),
	)

	for _, fn := range effects {
		fn()
	}
}

func (m *Mount) onDenied() {
	if err := m.nav.Navigate(m.ctx, redirect.Auth(m.path)); err != nil {
		m.guard.logger.LogAttrs(m.ctx, slog.LevelWarn, "redirect to sign-in failed",
			logger.Component("navguard"),
			logger.Path(m.path),
			logger.Error(err),
		)
	}
	m.guard.deferNotice(m.ctx, AuthRequired(m.path))
}

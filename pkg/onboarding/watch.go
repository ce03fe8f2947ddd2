package onboarding

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/storefront/pkg/authstate"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/redirect"
)

// WatchOption configures a Watch.
type WatchOption func(*watch)

// WatchReturnPath sets the return path honoured for onboarded users.
func WatchReturnPath(p string) WatchOption {
	return func(w *watch) {
		w.returnPath = p
	}
}

// WatchCurrentPath suppresses navigations whose location equals p, so a
// tab already on its destination is not reloaded.
func WatchCurrentPath(p string) WatchOption {
	return func(w *watch) {
		w.currentPath = p
	}
}

type watch struct {
	router      *Router
	store       *authstate.Store
	nav         redirect.Navigator
	returnPath  string
	currentPath string

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	baseSeq uint64
	gen     uint64
	unsub   func()
	wg      sync.WaitGroup
}

// Watch routes the tab behind store whenever the one-shot session check
// resolves authenticated or a sign-in is pushed. Token refreshes and user
// updates do not re-route. The returned stop cancels pending lookups'
// effects and waits for them to finish.
func (r *Router) Watch(store *authstate.Store, nav redirect.Navigator, opts ...WatchOption) (stop func()) {
	if nav == nil {
		nav = redirect.Discard
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &watch{
		router: r,
		store:  store,
		nav:    nav,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(w)
	}

	// Holding mu while subscribing keeps listener calls from racing the
	// initial snapshot.
	w.mu.Lock()
	w.unsub = store.Subscribe(w.onChange)
	snap := store.Snapshot()
	w.baseSeq = snap.Seq
	if snap.Resolved && snap.Status.IsAuthenticated() {
		w.dispatchLocked(snap.Status.UserID, authstate.EventInitialSession)
	}
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			unsub := w.unsub
			w.unsub = nil
			w.mu.Unlock()

			unsub()
			cancel()
			w.wg.Wait()
		})
	}
}

func (w *watch) onChange(c authstate.Change) {
	if !c.Status.IsAuthenticated() {
		return
	}
	if c.Producer != authstate.ProducerCheck && c.Event != authstate.EventSignedIn {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if c.Seq <= w.baseSeq || w.ctx.Err() != nil {
		return
	}
	w.dispatchLocked(c.Status.UserID, c.Event)
}

// dispatchLocked starts a lookup for userID. Callers hold w.mu.
func (w *watch) dispatchLocked(userID string, event authstate.EventType) {
	w.gen++
	gen := w.gen

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.resolve(gen, userID, event)
	}()
}

func (w *watch) resolve(gen uint64, userID string, event authstate.EventType) {
	target := w.router.Decide(w.ctx, userID, w.returnPath)

	w.mu.Lock()
	latest := gen == w.gen
	w.mu.Unlock()

	current := w.store.Status()
	if !latest || !current.IsAuthenticated() || current.UserID != userID || w.ctx.Err() != nil {
		w.router.logger.LogAttrs(w.ctx, slog.LevelDebug, "stale onboarding decision discarded",
			logger.Component("onboarding"),
			logger.UserID(userID),
			logger.Event(string(event)),
			logger.Target(target),
			logger.Status(current),
		)
		return
	}

	if w.currentPath != "" && w.router.paths.URL(target) == w.currentPath {
		return
	}

	if err := w.nav.Navigate(w.ctx, target); err != nil {
		w.router.logger.LogAttrs(w.ctx, slog.LevelWarn, "onboarding redirect failed",
			logger.Component("onboarding"),
			logger.UserID(userID),
			logger.Target(target),
			logger.Error(err),
		)
	}
}

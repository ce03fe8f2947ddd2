package storefront

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/storefront/handler"
	"github.com/dmitrymomot/storefront/pkg/authstate"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/navguard"
	"github.com/dmitrymomot/storefront/pkg/onboarding"
	"github.com/dmitrymomot/storefront/pkg/redirect"
	"github.com/dmitrymomot/storefront/pkg/statemachine"
)

// tabOutbox is the number of pending writes a tab may queue before
// further writes are dropped.
const tabOutbox = 16

// tab serializes writes to one datastar stream. Store listeners run on the
// store's writer, so they enqueue instead of writing.
type tab struct {
	out chan func(*datastar.ServerSentEventGenerator) error
	log *slog.Logger
}

type tabContextKey struct{}

func tabFromContext(ctx context.Context) (*tab, bool) {
	t, ok := ctx.Value(tabContextKey{}).(*tab)
	return t, ok
}

func (t *tab) send(ctx context.Context, write func(*datastar.ServerSentEventGenerator) error) {
	select {
	case t.out <- write:
	default:
		t.log.LogAttrs(ctx, slog.LevelWarn, "tab outbox full, dropping update")
	}
}

// navigator pushes navigations down this tab's stream.
func (t *tab) navigator(paths redirect.Paths) redirect.Navigator {
	return redirect.NavigatorFunc(func(ctx context.Context, target redirect.Target) error {
		t.send(ctx, func(sse *datastar.ServerSentEventGenerator) error {
			return redirect.SSENavigator(sse, paths).Navigate(ctx, target)
		})
		return nil
	})
}

// Notifier delivers guard notices to the tab whose mount raised them.
// Use it with navguard.WithNotifier.
func Notifier() navguard.Notifier {
	return navguard.NotifierFunc(func(ctx context.Context, n navguard.Notice) {
		t, ok := tabFromContext(ctx)
		if !ok {
			return
		}
		t.send(ctx, func(sse *datastar.ServerSentEventGenerator) error {
			return sse.PatchElementTempl(noticeView(n),
				datastar.WithSelector("#"+toastsID),
				datastar.WithMode(datastar.ElementPatchModePrepend),
			)
		})
	})
}

// stream keeps one tab in step with its session until the tab closes or
// the server shuts down.
func (m *Module) stream(w http.ResponseWriter, r *http.Request) {
	page, query := m.streamPage(r)

	src, err := m.opts.Sessions.Source(r)
	if err != nil {
		m.log.LogAttrs(r.Context(), slog.LevelDebug, "tab stream without session", logger.Error(err))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	m.render(w, r, handler.SSE(func(stream handler.StreamContext) error {
		t := &tab{
			out: make(chan func(*datastar.ServerSentEventGenerator) error, tabOutbox),
			log: m.log.With(logger.Path(page)),
		}
		ctx := context.WithValue(stream, tabContextKey{}, t)

		store := authstate.NewStore(src,
			authstate.WithConfig(m.opts.Store),
			authstate.WithLogger(m.log),
		)
		defer store.Close()

		defer m.followStatus(ctx, t, store)()

		nav := t.navigator(m.paths)
		if m.isProtected(page) {
			mount := m.opts.Guard.Mount(ctx, store, page, nav)
			defer mount.Unmount()
			defer m.followMount(ctx, t, store, mount, page)()
		} else {
			stop := m.opts.Router.Watch(store, nav,
				onboarding.WatchReturnPath(query.Get(m.paths.ReturnParam)),
				onboarding.WatchCurrentPath(page),
			)
			defer stop()
		}

		sse := stream.SSE()
		for {
			select {
			case <-ctx.Done():
				return nil
			case write := <-t.out:
				if err := write(sse); err != nil {
					m.log.LogAttrs(ctx, slog.LevelDebug, "tab stream closed", logger.Error(err))
					return nil
				}
			}
		}
	}))
}

// followStatus mirrors the store into the tab's auth signals, starting
// once the session check has resolved.
func (m *Module) followStatus(ctx context.Context, t *tab, store *authstate.Store) (stop func()) {
	push := func() {
		t.send(ctx, func(sse *datastar.ServerSentEventGenerator) error {
			status := store.Status()
			data, err := json.Marshal(map[string]any{
				"auth": map[string]string{"status": status.Kind.String(), "userId": status.UserID},
			})
			if err != nil {
				return err
			}
			return sse.PatchSignals(data)
		})
	}

	unsub := store.Subscribe(func(c authstate.Change) {
		if c.Producer == authstate.ProducerPush {
			push()
		}
	})
	go func() {
		select {
		case <-store.Ready():
			push()
		case <-ctx.Done():
		}
	}()
	return unsub
}

// followMount re-renders the guarded region when the mount leaves the
// state the page was served in. The page was rendered allowed, so nothing
// is patched until a sign-out denies it or a later sign-in allows it again.
func (m *Module) followMount(ctx context.Context, t *tab, store *authstate.Store, mount *navguard.Mount, page string) (stop func()) {
	var shown statemachine.State = navguard.StateAllowed // only touched by the stream goroutine

	refresh := func() {
		t.send(ctx, func(sse *datastar.ServerSentEventGenerator) error {
			state := mount.State()
			if state == navguard.StateLoading || state == shown {
				return nil
			}
			shown = state

			content := m.pageContent(page, store.Status().UserID)
			return sse.PatchElementTempl(guardedRegion(mount.Render(content)))
		})
	}

	unsub := store.Subscribe(func(authstate.Change) { refresh() })
	go func() {
		select {
		case <-store.Ready():
			refresh()
		case <-mount.Done():
		}
	}()
	return unsub
}

// pageContent is the guarded content of page for userID.
func (m *Module) pageContent(page, userID string) templ.Component {
	switch page {
	case m.paths.Dashboard:
		return dashboardView(userID)
	case m.paths.Onboarding:
		return onboardingView(m.paths.Onboarding, onboardingForm{}, "")
	default:
		return protectedView(page, userID)
	}
}

// streamPage returns the sanitized path and query of the page that opened
// the stream.
func (m *Module) streamPage(r *http.Request) (string, url.Values) {
	raw, ok := redirect.Sanitize(r.URL.Query().Get("page"))
	if !ok {
		return "/", url.Values{}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "/", url.Values{}
	}
	return u.Path, u.Query()
}

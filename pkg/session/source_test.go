package session_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/authstate"
	"github.com/dmitrymomot/storefront/pkg/session"
)

func TestSource_FollowsSessionAcrossTabs(t *testing.T) {
	t.Parallel()

	m := setupManager(t)
	ctx := context.Background()

	// First page load creates the browser session.
	w0 := httptest.NewRecorder()
	_, err := m.Ensure(ctx, w0, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	src, err := m.Source(withCookies(w0))
	require.NoError(t, err)

	got, err := src.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, authstate.Unauthenticated(), authstate.FromSession(got))

	events := make(chan authstate.Event, 8)
	sub := src.OnAuthStateChange(func(e authstate.Event) { events <- e })
	defer sub.Unsubscribe()

	// Another tab signs in with the same cookie.
	w1 := httptest.NewRecorder()
	_, err = m.Authenticate(ctx, w1, withCookies(w0), "user-1")
	require.NoError(t, err)

	e := receive(t, events)
	assert.Equal(t, authstate.EventSignedIn, e.Type)
	assert.Equal(t, authstate.Authenticated("user-1"), authstate.FromSession(e.Session))

	// The source followed the token rotation.
	got, err = src.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, authstate.Authenticated("user-1"), authstate.FromSession(got))

	// And signs out again.
	require.NoError(t, m.SignOut(ctx, httptest.NewRecorder(), withCookies(w1)))
	e = receive(t, events)
	assert.Equal(t, authstate.EventSignedOut, e.Type)
	assert.Equal(t, authstate.Unauthenticated(), authstate.FromSession(e.Session))
}

func TestSource_IgnoresOtherSessions(t *testing.T) {
	t.Parallel()

	m := setupManager(t)
	ctx := context.Background()

	w0 := httptest.NewRecorder()
	_, err := m.Ensure(ctx, w0, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	src, err := m.Source(withCookies(w0))
	require.NoError(t, err)

	events := make(chan authstate.Event, 8)
	sub := src.OnAuthStateChange(func(e authstate.Event) { events <- e })
	defer sub.Unsubscribe()

	// A different browser signs in.
	_, err = m.Authenticate(ctx, httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "user-2")
	require.NoError(t, err)

	select {
	case e := <-events:
		t.Fatalf("unexpected event %v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSource_DestroyedSessionResolvesSignedOut(t *testing.T) {
	t.Parallel()

	m := setupManager(t)
	ctx := context.Background()

	w := httptest.NewRecorder()
	_, err := m.Authenticate(ctx, w, httptest.NewRequest(http.MethodGet, "/", nil), "user-1")
	require.NoError(t, err)
	src, err := m.Source(withCookies(w))
	require.NoError(t, err)

	events := make(chan authstate.Event, 8)
	sub := src.OnAuthStateChange(func(e authstate.Event) { events <- e })
	defer sub.Unsubscribe()

	require.NoError(t, m.Destroy(ctx, httptest.NewRecorder(), withCookies(w)))
	e := receive(t, events)
	assert.Equal(t, authstate.EventSignedOut, e.Type)
	assert.Nil(t, e.Session)

	got, err := src.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// The store built on a source sees the sign-in made by another tab.
func TestSource_FeedsStore(t *testing.T) {
	t.Parallel()

	m := setupManager(t)
	ctx := context.Background()

	w0 := httptest.NewRecorder()
	_, err := m.Ensure(ctx, w0, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	src, err := m.Source(withCookies(w0))
	require.NoError(t, err)

	store := authstate.NewStore(src)
	defer store.Close()
	<-store.Ready()
	assert.Equal(t, authstate.Unauthenticated(), store.Status())

	_, err = m.Authenticate(ctx, httptest.NewRecorder(), withCookies(w0), "user-1")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return store.Status() == authstate.Authenticated("user-1")
	}, 2*time.Second, 5*time.Millisecond)
}

// A tab that falls behind its own session's events still sees a later
// sign-out, and other browsers' traffic never reaches its backlog.
func TestSource_RecoversAfterFallingBehind(t *testing.T) {
	t.Parallel()

	m := setupManager(t, func(cfg *session.Config) { cfg.EventBuffer = 1 })
	ctx := context.Background()

	w := httptest.NewRecorder()
	_, err := m.Ensure(ctx, w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	src, err := m.Source(withCookies(w))
	require.NoError(t, err)

	stalled := make(chan struct{})
	resume := make(chan struct{})
	var once sync.Once
	events := make(chan authstate.Event, 64)
	sub := src.OnAuthStateChange(func(e authstate.Event) {
		once.Do(func() {
			close(stalled)
			<-resume
		})
		events <- e
	})
	defer sub.Unsubscribe()

	next := httptest.NewRecorder()
	_, err = m.Authenticate(ctx, next, withCookies(w), "user-1")
	require.NoError(t, err)
	w = next
	<-stalled

	// Other browsers sign in while this tab is busy.
	for i := range 50 {
		_, err := m.Authenticate(ctx, httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), fmt.Sprintf("other-%d", i))
		require.NoError(t, err)
	}

	// Its own session rotates more often than the backlog holds.
	for range 3 {
		next := httptest.NewRecorder()
		require.NoError(t, m.Refresh(ctx, next, withCookies(w)))
		w = next
	}
	close(resume)

	require.NoError(t, m.SignOut(ctx, httptest.NewRecorder(), withCookies(w)))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-events:
			require.NotContains(t, userOfEvent(e), "other-")
			if authstate.FromSession(e.Session) == authstate.Unauthenticated() {
				return
			}
		case <-deadline:
			t.Fatal("sign-out never reached the tab")
		}
	}
}

func userOfEvent(e authstate.Event) string {
	if e.Session == nil {
		return ""
	}
	return e.Session.UserID
}

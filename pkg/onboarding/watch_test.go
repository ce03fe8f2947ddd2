package onboarding_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/authstate"
	"github.com/dmitrymomot/storefront/pkg/authstate/authstatetest"
	"github.com/dmitrymomot/storefront/pkg/onboarding"
	"github.com/dmitrymomot/storefront/pkg/redirect"
)

// gatedLookup blocks each lookup until the test releases it.
type gatedLookup struct {
	mu       sync.Mutex
	profiles map[string]*onboarding.ProfileFields
	gates    map[string]chan struct{}
	calls    chan string
}

func newGatedLookup() *gatedLookup {
	return &gatedLookup{
		profiles: make(map[string]*onboarding.ProfileFields),
		gates:    make(map[string]chan struct{}),
		calls:    make(chan string, 16),
	}
}

func (l *gatedLookup) set(userID string, p *onboarding.ProfileFields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.profiles[userID] = p
	l.gates[userID] = make(chan struct{})
}

func (l *gatedLookup) release(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	close(l.gates[userID])
}

func (l *gatedLookup) GetProfile(ctx context.Context, userID string) (*onboarding.ProfileFields, error) {
	l.mu.Lock()
	gate, p := l.gates[userID], l.profiles[userID]
	l.mu.Unlock()

	l.calls <- userID
	select {
	case <-gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if p == nil {
		return nil, onboarding.ErrProfileNotFound
	}
	return p, nil
}

func (l *gatedLookup) waitCall(t *testing.T, userID string) {
	t.Helper()
	select {
	case got := <-l.calls:
		require.Equal(t, userID, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("no lookup for %s", userID)
	}
}

type navRecorder struct {
	mu      sync.Mutex
	targets []redirect.Target
}

func (n *navRecorder) Navigate(_ context.Context, t redirect.Target) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, t)
	return nil
}

func (n *navRecorder) Targets() []redirect.Target {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]redirect.Target(nil), n.targets...)
}

func TestWatch_RoutesOnCheck(t *testing.T) {
	t.Parallel()

	lookup := newGatedLookup()
	lookup.set("u1", incomplete)
	router := onboarding.NewRouter(lookup)

	src := authstatetest.NewSource()
	store := authstate.NewStore(src)
	t.Cleanup(func() { _ = store.Close() })
	nav := &navRecorder{}
	stop := router.Watch(store, nav)
	t.Cleanup(stop)

	src.Resolve(authstatetest.SessionFor("u1"), nil)
	lookup.waitCall(t, "u1")
	lookup.release("u1")

	require.Eventually(t, func() bool { return len(nav.Targets()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, redirect.Onboarding(""), nav.Targets()[0])
}

func TestWatch_SignedOutCheckDoesNotRoute(t *testing.T) {
	t.Parallel()

	lookup := newGatedLookup()
	router := onboarding.NewRouter(lookup)

	src := authstatetest.NewSource()
	store := authstate.NewStore(src)
	t.Cleanup(func() { _ = store.Close() })
	nav := &navRecorder{}
	stop := router.Watch(store, nav)

	src.Resolve(nil, nil)
	<-store.Ready()
	stop()

	assert.Empty(t, lookup.calls)
	assert.Empty(t, nav.Targets())
}

func TestWatch_StaleUserDiscarded(t *testing.T) {
	t.Parallel()

	lookup := newGatedLookup()
	lookup.set("u1", incomplete)
	lookup.set("u2", complete)
	router := onboarding.NewRouter(lookup)

	src := authstatetest.NewSource()
	store := authstate.NewStore(src)
	t.Cleanup(func() { _ = store.Close() })
	nav := &navRecorder{}
	stop := router.Watch(store, nav, onboarding.WatchReturnPath("/orders"))
	t.Cleanup(stop)

	src.Resolve(authstatetest.SessionFor("u1"), nil)
	lookup.waitCall(t, "u1")

	// The user changes while the first lookup is in flight.
	src.SignIn("u2")
	lookup.waitCall(t, "u2")

	lookup.release("u2")
	require.Eventually(t, func() bool { return len(nav.Targets()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, redirect.Dashboard("/orders"), nav.Targets()[0])

	// u1's late result would send u2 to onboarding; it must be dropped.
	lookup.release("u1")
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, nav.Targets(), 1)
}

func TestWatch_SignOutDiscardsPending(t *testing.T) {
	t.Parallel()

	lookup := newGatedLookup()
	lookup.set("u1", complete)
	router := onboarding.NewRouter(lookup)

	src := authstatetest.NewSource()
	store := authstate.NewStore(src)
	t.Cleanup(func() { _ = store.Close() })
	nav := &navRecorder{}
	stop := router.Watch(store, nav)
	t.Cleanup(stop)

	src.Resolve(nil, nil)
	<-store.Ready()

	src.SignIn("u1")
	lookup.waitCall(t, "u1")
	src.SignOut()
	lookup.release("u1")

	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, nav.Targets())
}

func TestWatch_TokenRefreshDoesNotRoute(t *testing.T) {
	t.Parallel()

	lookup := newGatedLookup()
	lookup.set("u1", complete)
	lookup.release("u1")
	router := onboarding.NewRouter(lookup)

	src := authstatetest.NewSource()
	store := authstate.NewStore(src)
	t.Cleanup(func() { _ = store.Close() })
	nav := &navRecorder{}
	stop := router.Watch(store, nav)
	t.Cleanup(stop)

	src.Resolve(authstatetest.SessionFor("u1"), nil)
	lookup.waitCall(t, "u1")
	require.Eventually(t, func() bool { return len(nav.Targets()) == 1 }, 2*time.Second, 5*time.Millisecond)

	src.Emit(authstate.EventTokenRefreshed, authstatetest.SessionFor("u1"))
	src.Emit(authstate.EventUserUpdated, authstatetest.SessionFor("u1"))

	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, lookup.calls)
	assert.Len(t, nav.Targets(), 1)
}

func TestWatch_AlreadyResolvedStore(t *testing.T) {
	t.Parallel()

	lookup := newGatedLookup()
	lookup.set("u1", complete)
	lookup.release("u1")
	router := onboarding.NewRouter(lookup)

	src := authstatetest.NewSource()
	store := authstate.NewStore(src)
	t.Cleanup(func() { _ = store.Close() })
	src.Resolve(authstatetest.SessionFor("u1"), nil)
	<-store.Ready()

	nav := &navRecorder{}
	stop := router.Watch(store, nav)
	t.Cleanup(stop)

	lookup.waitCall(t, "u1")
	require.Eventually(t, func() bool { return len(nav.Targets()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, redirect.Dashboard(""), nav.Targets()[0])
}

func TestWatch_CurrentPathSuppressesReload(t *testing.T) {
	t.Parallel()

	lookup := newGatedLookup()
	lookup.set("u1", complete)
	lookup.release("u1")
	router := onboarding.NewRouter(lookup)

	src := authstatetest.NewSource()
	store := authstate.NewStore(src)
	t.Cleanup(func() { _ = store.Close() })
	nav := &navRecorder{}
	stop := router.Watch(store, nav, onboarding.WatchCurrentPath("/dashboard"))

	src.Resolve(authstatetest.SessionFor("u1"), nil)
	lookup.waitCall(t, "u1")
	stop()

	assert.Empty(t, nav.Targets())
}

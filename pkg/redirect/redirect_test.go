package redirect_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starfederation/datastar-go/datastar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/redirect"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in string
		ok bool
	}{
		{in: "/dashboard", ok: true},
		{in: "/orders/42?tab=items", ok: true},
		{in: "/search?q=a%20b#top", ok: true},
		{in: "", ok: false},
		{in: "dashboard", ok: false},
		{in: "//evil.example", ok: false},
		{in: "/\\evil.example", ok: false},
		{in: "https://evil.example/x", ok: false},
		{in: "javascript:alert(1)", ok: false},
		{in: "/foo\nbar", ok: false},
		{in: "/foo\x00", ok: false},
		{in: "/x</script><script>alert(document.cookie)</script>", ok: false},
		{in: "/x\"onload=\"alert(1)", ok: false},
		{in: "/x'y", ok: false},
		{in: "/x`y", ok: false},
		{in: "/a b", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := redirect.Sanitize(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.in, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestPathsURL(t *testing.T) {
	t.Parallel()

	p := redirect.DefaultPaths()

	assert.Equal(t, "", p.URL(redirect.None()))
	assert.Equal(t, "/auth", p.URL(redirect.Auth("")))
	assert.Equal(t, "/auth?redirect=%2Forders%2F42", p.URL(redirect.Auth("/orders/42")))
	assert.Equal(t, "/auth", p.URL(redirect.Auth("//evil.example")), "invalid return paths are dropped")
	assert.Equal(t, "/onboarding", p.URL(redirect.Onboarding("")))
	assert.Equal(t, "/onboarding?redirect=%2Fbilling", p.URL(redirect.Onboarding("/billing")))
	assert.Equal(t, "/dashboard", p.URL(redirect.Dashboard("")))
	assert.Equal(t, "/billing", p.URL(redirect.Dashboard("/billing")))
}

func TestTarget(t *testing.T) {
	t.Parallel()

	assert.False(t, redirect.None().IsNavigation())
	assert.True(t, redirect.Auth("/x").Replace)
	assert.Equal(t, "auth(/x)", redirect.Auth("/x").String())
	assert.Equal(t, "dashboard", redirect.Dashboard("").String())
	assert.Equal(t, "stay", redirect.None().String())
}

func TestReturnPath(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/auth?redirect=%2Forders", nil)
	assert.Equal(t, "/orders", redirect.ReturnPath(r, "redirect"))

	r = httptest.NewRequest(http.MethodGet, "/auth?redirect=https%3A%2F%2Fevil.example", nil)
	assert.Empty(t, redirect.ReturnPath(r, "redirect"))

	r = httptest.NewRequest(http.MethodGet, "/orders/7?tab=items", nil)
	assert.Equal(t, "/orders/7?tab=items", redirect.RequestPath(r))
}

func TestHTTPNavigator(t *testing.T) {
	t.Parallel()

	t.Run("regular request", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)

		err := redirect.HTTPNavigator(w, r, redirect.DefaultPaths()).Navigate(context.Background(), redirect.Auth("/dashboard"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/auth?redirect=%2Fdashboard", w.Header().Get("Location"))
	})

	t.Run("datastar request", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		r.Header.Set("Accept", "text/event-stream")

		err := redirect.HTTPNavigator(w, r, redirect.DefaultPaths()).Navigate(context.Background(), redirect.Onboarding(""))
		require.NoError(t, err)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
		assert.Contains(t, w.Body.String(), "window.location.replace")
		assert.Contains(t, w.Body.String(), "/onboarding")
	})

	t.Run("stay", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)

		require.NoError(t, redirect.HTTPNavigator(w, r, redirect.DefaultPaths()).Navigate(context.Background(), redirect.None()))
		assert.Empty(t, w.Header().Get("Location"))
		assert.Empty(t, w.Body.String())
	})
}

func TestSSENavigator(t *testing.T) {
	t.Parallel()

	navigate := func(t *testing.T, target redirect.Target) string {
		t.Helper()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/app/stream", nil)
		r.Header.Set("Accept", "text/event-stream")

		sse := datastar.NewSSE(w, r)
		require.NoError(t, redirect.SSENavigator(sse, redirect.DefaultPaths()).Navigate(context.Background(), target))
		return w.Body.String()
	}

	t.Run("replace carries the return path", func(t *testing.T) {
		t.Parallel()
		body := navigate(t, redirect.Auth("/orders/7?tab=items"))
		assert.Contains(t, body, `window.location.replace("/auth?redirect=%2Forders%2F7%3Ftab%3Ditems")`)
	})

	t.Run("script characters in the return path never reach the element", func(t *testing.T) {
		t.Parallel()
		body := navigate(t, redirect.Dashboard("/x</script><script>alert(document.cookie)</script>"))
		assert.Contains(t, body, `window.location.replace("/dashboard")`)
		assert.Equal(t, 1, strings.Count(body, "<script"))
		assert.NotContains(t, body, "alert(")
	})

	t.Run("stay writes nothing", func(t *testing.T) {
		t.Parallel()
		assert.NotContains(t, navigate(t, redirect.None()), "window.location")
	})
}

func TestNavigatorFunc(t *testing.T) {
	t.Parallel()

	var got redirect.Target
	nav := redirect.NavigatorFunc(func(_ context.Context, target redirect.Target) error {
		got = target
		return nil
	})

	require.NoError(t, nav.Navigate(context.Background(), redirect.Dashboard("/x")))
	assert.Equal(t, redirect.ToDashboard, got.Kind)
	assert.NoError(t, redirect.Discard.Navigate(context.Background(), redirect.Auth("")))
}

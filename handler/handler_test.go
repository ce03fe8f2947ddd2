package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/handler"
	"github.com/dmitrymomot/storefront/pkg/binder"
	"github.com/dmitrymomot/storefront/pkg/redirect"
)

type signInForm struct {
	UserID string `form:"user_id"`
}

func text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func dsRequest(method, target string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	r.Header.Set("Accept", "text/event-stream")
	return r
}

func TestWrap_BindsForm(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(func(_ handler.Context, req signInForm) handler.Response {
		return handler.Templ(text("hello " + req.UserID))
	}, handler.WithBinders[handler.Context, signInForm](binder.Form()))

	r := httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(url.Values{"user_id": {"u1"}}.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "hello u1", w.Body.String())
}

func TestWrap_BindErrorIsBadRequest(t *testing.T) {
	t.Parallel()

	called := false
	h := handler.Wrap(func(_ handler.Context, _ signInForm) handler.Response {
		called = true
		return nil
	}, handler.WithBinders[handler.Context, signInForm](binder.Form()))

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader("{}")))

	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWrap_NilResponse(t *testing.T) {
	t.Parallel()

	var got error
	h := handler.Wrap(func(handler.Context, struct{}) handler.Response { return nil },
		handler.WithErrorHandler[handler.Context, struct{}](func(_ handler.Context, err error) { got = err }),
	)
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, got, handler.ErrNilResponse)
}

func TestWrap_Decorators(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) handler.Decorator[handler.Context, struct{}] {
		return func(next handler.HandlerFunc[handler.Context, struct{}]) handler.HandlerFunc[handler.Context, struct{}] {
			return func(ctx handler.Context, req struct{}) handler.Response {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	h := handler.Wrap(func(handler.Context, struct{}) handler.Response {
		order = append(order, "handler")
		return handler.Templ(text("ok"))
	}, handler.WithDecorators(mark("outer"), mark("inner")))

	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestTemplPartial(t *testing.T) {
	t.Parallel()

	resp := handler.TemplPartial(text(`<div id="card">partial</div>`), text("full page"), handler.WithTarget("#card"))

	w := httptest.NewRecorder()
	require.NoError(t, resp.Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, "full page", w.Body.String())

	w = httptest.NewRecorder()
	require.NoError(t, resp.Render(w, dsRequest(http.MethodGet, "/")))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	assert.Contains(t, w.Body.String(), "datastar-patch-elements")
	assert.Contains(t, w.Body.String(), "partial")
	assert.Contains(t, w.Body.String(), "#card")
}

func TestNavigate(t *testing.T) {
	t.Parallel()

	paths := redirect.DefaultPaths()

	w := httptest.NewRecorder()
	require.NoError(t, handler.Navigate(redirect.Auth("/dashboard"), paths).Render(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil)))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth?redirect=%2Fdashboard", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	require.NoError(t, handler.Navigate(redirect.Dashboard(""), paths).Render(w, dsRequest(http.MethodPost, "/auth")))
	assert.Contains(t, w.Body.String(), "window.location.replace")
	assert.Contains(t, w.Body.String(), "/dashboard")

	w = httptest.NewRecorder()
	require.NoError(t, handler.Navigate(redirect.None(), paths).Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Empty(t, w.Body.String())
	assert.Empty(t, w.Header().Get("Location"))
}

func TestSSE(t *testing.T) {
	t.Parallel()

	resp := handler.SSE(func(stream handler.StreamContext) error {
		if err := stream.SendSignals(map[string]any{"signedIn": true}); err != nil {
			return err
		}
		return stream.SendComponent(text(`<div id="status">ok</div>`))
	})

	w := httptest.NewRecorder()
	require.NoError(t, resp.Render(w, dsRequest(http.MethodGet, "/app/stream")))
	assert.Contains(t, w.Body.String(), "datastar-patch-signals")
	assert.Contains(t, w.Body.String(), `"signedIn":true`)
	assert.Contains(t, w.Body.String(), `<div id="status">ok</div>`)

	err := resp.Render(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/app/stream", nil))
	var httpErr handler.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestNewErrorHandler(t *testing.T) {
	t.Parallel()

	page := func(v handler.ErrorView) templ.Component { return text("page:" + v.Message) }
	toast := func(v handler.ErrorView) templ.Component { return text(`<div class="toast">` + v.Message + `</div>`) }
	eh := handler.NewErrorHandler(nil, handler.ErrorHandlerConfig{Page: page, Toast: toast})

	tests := []struct {
		name     string
		req      *http.Request
		err      error
		code     int
		contains string
	}{
		{"page for http error", httptest.NewRequest(http.MethodGet, "/x", nil), handler.NewHTTPError(http.StatusNotFound, "Not here."), http.StatusNotFound, "page:Not here."},
		{"internal message hidden", httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("pq: secret detail"), http.StatusInternalServerError, "page:Something went wrong"},
		{"toast for datastar", dsRequest(http.MethodPost, "/x"), handler.BadRequest(errors.New("bad")), http.StatusOK, `class="toast"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			eh(handler.NewContext(w, tt.req), tt.err)
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
			assert.NotContains(t, w.Body.String(), "secret detail")
		})
	}
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := handler.BadRequest(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, "Not Found", handler.NewHTTPError(http.StatusNotFound, "").Message)
}

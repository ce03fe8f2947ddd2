package redirect

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
)

// Navigator performs a navigation side effect. Stay targets are ignored.
type Navigator interface {
	Navigate(ctx context.Context, t Target) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, t Target) error

func (f NavigatorFunc) Navigate(ctx context.Context, t Target) error { return f(ctx, t) }

// Discard is a Navigator that does nothing.
var Discard Navigator = NavigatorFunc(func(context.Context, Target) error { return nil })

// IsDataStar reports whether r was issued by the datastar client.
func IsDataStar(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		return true
	}
	return r.URL.Query().Has("datastar")
}

type httpNavigator struct {
	w     http.ResponseWriter
	r     *http.Request
	paths Paths
}

// HTTPNavigator answers r. Regular requests get a 303 See Other; datastar
// requests get a redirect event on a fresh SSE response.
func HTTPNavigator(w http.ResponseWriter, r *http.Request, paths Paths) Navigator {
	return &httpNavigator{w: w, r: r, paths: paths}
}

func (n *httpNavigator) Navigate(_ context.Context, t Target) error {
	if !t.IsNavigation() {
		return nil
	}

	location := n.paths.URL(t)
	if IsDataStar(n.r) {
		return navigateSSE(datastar.NewSSE(n.w, n.r), location, t.Replace)
	}

	http.Redirect(n.w, n.r, location, http.StatusSeeOther)
	return nil
}

type sseNavigator struct {
	sse   *datastar.ServerSentEventGenerator
	paths Paths
}

// SSENavigator pushes navigations down an open datastar stream.
func SSENavigator(sse *datastar.ServerSentEventGenerator, paths Paths) Navigator {
	return &sseNavigator{sse: sse, paths: paths}
}

func (n *sseNavigator) Navigate(_ context.Context, t Target) error {
	if !t.IsNavigation() {
		return nil
	}
	return navigateSSE(n.sse, n.paths.URL(t), t.Replace)
}

// navigateSSE runs the navigation as a patched script element. The
// location is written as a JSON string, which escapes <, > and & so it
// cannot close the element.
func navigateSSE(sse *datastar.ServerSentEventGenerator, location string, replace bool) error {
	literal, err := json.Marshal(location)
	if err != nil {
		return err
	}
	method := "assign"
	if replace {
		method = "replace"
	}
	return sse.ExecuteScript("window.location." + method + "(" + string(literal) + ")")
}

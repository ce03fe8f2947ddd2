package handler

import (
	"net/http"

	"github.com/dmitrymomot/storefront/pkg/redirect"
)

// Navigate answers with a navigation to t. A Stay target renders nothing.
func Navigate(t redirect.Target, paths redirect.Paths) Response {
	return ResponseFunc(func(w http.ResponseWriter, r *http.Request) error {
		return redirect.HTTPNavigator(w, r, paths).Navigate(r.Context(), t)
	})
}


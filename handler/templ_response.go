package handler

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"
)

type TemplOption = datastar.PatchElementOption

// WithTarget sets the CSS selector a datastar patch applies to.
func WithTarget(selector string) TemplOption {
	return datastar.WithSelector(selector)
}

func WithPatchMode(mode datastar.ElementPatchMode) TemplOption {
	return datastar.WithMode(mode)
}

// Templ renders component as HTML, or as an element patch for datastar.
func Templ(component templ.Component, opts ...TemplOption) Response {
	return TemplPartial(component, component, opts...)
}

// TemplPartial renders full for browser requests and patches partial for
// datastar requests.
func TemplPartial(partial, full templ.Component, opts ...TemplOption) Response {
	return ResponseFunc(func(w http.ResponseWriter, r *http.Request) error {
		if IsDataStar(r) {
			return datastar.NewSSE(w, r).PatchElementTempl(partial, opts...)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		return full.Render(r.Context(), w)
	})
}

// Package handler turns typed storefront handlers into http.HandlerFuncs.
//
// A HandlerFunc receives a Context and a request value decoded by the
// configured binders, and returns a Response. Responses know how to answer
// both plain browser requests and datastar requests: Templ renders HTML or
// an element patch, Navigate answers with a 303 or a client-side location
// replace, and SSE keeps a datastar stream open for pushed updates.
//
//	type signInForm struct {
//		UserID string `form:"user_id"`
//	}
//
//	r.Post("/auth", handler.Wrap(func(ctx handler.Context, req signInForm) handler.Response {
//		...
//		return handler.Navigate(redirect.Dashboard(returnPath), paths)
//	}, handler.WithBinders[handler.Context, signInForm](binder.Form())))
//
// Errors from binding or rendering go to the ErrorHandler. NewErrorHandler
// renders an error page for browsers and an error toast for datastar.
package handler

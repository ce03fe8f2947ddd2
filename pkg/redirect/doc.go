// Package redirect holds the navigation contracts shared by the guard and
// the onboarding router: where to go (Target), how destinations map to URLs
// (Paths), how a return path is validated (Sanitize) and how a navigation
// side effect is performed (Navigator).
//
// Two navigators are provided. HTTPNavigator answers a request with a 303
// (or a datastar redirect event for datastar requests). SSENavigator pushes
// a redirect down an open datastar stream, which is how a long-lived tab is
// moved after a push event.
package redirect

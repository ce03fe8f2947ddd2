// Package storefront mounts the provider-facing pages of the storefront:
// sign-in, onboarding, the dashboard and the per-tab datastar stream that
// keeps every open tab in step with the session.
//
// Page loads are checked once by navguard.Guard.Middleware. After that
// each tab opens GET /app/stream, which owns one authstate.Store for the
// tab. Protected pages mount a navguard.Mount on it, so a sign-out in any
// tab sends this one to sign-in with a notice. Public pages run an
// onboarding.Router watch, so a sign-in anywhere routes this tab to
// onboarding or the dashboard.
package storefront

// Package onboarding decides where an authenticated user belongs: the
// onboarding flow when their provider profile is incomplete, the dashboard
// (or the page they came from) otherwise.
//
// The profile lookup is bounded by a timeout. A lookup that fails or times
// out is treated as onboarded, so a flaky profile backend sends users to the
// dashboard instead of trapping them in onboarding. A missing profile row
// (ErrProfileNotFound) is not a failure and routes to onboarding.
//
// Router.Watch follows a tab's authstate.Store and re-routes on the
// resolved session check and on sign-in. A lookup result is applied only if
// no newer decision was dispatched and the store still holds the same user;
// otherwise it is dropped without navigating.
package onboarding

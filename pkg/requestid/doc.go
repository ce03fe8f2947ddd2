// Package requestid tags every request with a correlation ID.
//
// An incoming X-Request-ID is reused when it is 1..128 characters of
// [A-Za-z0-9_-]; anything else is replaced with a fresh UUID. The ID is
// echoed in the response header and stored in the request context, where
// LogExtractor picks it up so guard and session log lines can be joined
// with the access log.
package requestid

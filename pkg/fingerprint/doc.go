// Package fingerprint derives a browser fingerprint from request headers
// that stay the same across every request a browser makes, page loads and
// datastar streams alike.
//
// Sessions store the fingerprint at creation and reject a token presented
// by a different browser:
//
//	mgr := session.New(
//		session.WithCookieManager(cookies),
//		session.WithFingerprint(fingerprint.Generate),
//	)
package fingerprint

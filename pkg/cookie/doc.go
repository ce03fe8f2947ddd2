// Package cookie reads and writes the storefront's cookies.
//
// A Manager holds one or more secrets of at least 32 bytes; the first
// encrypts, all of them decrypt, so secrets can be rotated without logging
// everyone out. Values are sealed with AES-256-GCM, which gives both
// confidentiality and tamper detection. The session token and one-time
// flash notices are stored this way.
//
//	cookies, err := cookie.NewFromConfig(cfg)
//	_ = cookies.SetFlash(w, r, "notice", notice)
//
//	var n navguard.Notice
//	if ok, _ := cookies.PopFlash(w, r, "notice", &n); ok { ... }
package cookie

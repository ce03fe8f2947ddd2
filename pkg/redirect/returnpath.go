package redirect

import (
	"net/http"
	"net/url"
	"strings"
)

// unsafePathChars never appear in a well-formed path; they would be
// percent-encoded by a browser.
const unsafePathChars = "<>\"'`"

// Sanitize accepts only same-origin absolute paths. Schemes, hosts,
// protocol-relative and backslash forms, control characters, whitespace,
// and HTML or script quoting characters are rejected.
func Sanitize(p string) (string, bool) {
	if p == "" || len(p) > 2048 {
		return "", false
	}
	if p[0] != '/' {
		return "", false
	}
	if strings.HasPrefix(p, "//") || strings.ContainsRune(p, '\\') {
		return "", false
	}
	for _, r := range p {
		if r <= 0x20 || r == 0x7f || strings.ContainsRune(unsafePathChars, r) {
			return "", false
		}
	}

	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return "", false
	}
	if !strings.HasPrefix(u.Path, "/") {
		return "", false
	}

	return p, true
}

// ReturnPath reads and sanitizes the return path carried in query param of r.
// It returns "" when absent or invalid.
func ReturnPath(r *http.Request, param string) string {
	if param == "" {
		return ""
	}
	s, _ := Sanitize(r.URL.Query().Get(param))
	return s
}

// RequestPath returns the path and query of r, suitable as a return path.
func RequestPath(r *http.Request) string {
	p := r.URL.RequestURI()
	s, _ := Sanitize(p)
	return s
}

package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// Generate returns a 32-character hex fingerprint of r's User-Agent and
// Accept-Language. Accept, Accept-Encoding and header order are left out
// because they differ between page loads and event-stream requests of the
// same browser. Requests without either header get "".
func Generate(r *http.Request) string {
	var parts []string
	for _, v := range []string{r.UserAgent(), r.Header.Get("Accept-Language")} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return ""
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:16])
}

// Validate reports whether r comes from the browser that produced stored.
func Validate(r *http.Request, stored string) bool {
	return Generate(r) == stored
}

package fingerprint_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/storefront/pkg/fingerprint"
)

func request(headers map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	browser := map[string]string{
		"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
		"Accept-Language": "en-US,en;q=0.9",
	}

	t.Run("stable for the same browser", func(t *testing.T) {
		t.Parallel()
		fp := fingerprint.Generate(request(browser))
		assert.Regexp(t, "^[a-f0-9]{32}$", fp)
		assert.Equal(t, fp, fingerprint.Generate(request(browser)))
	})

	t.Run("page load and event stream match", func(t *testing.T) {
		t.Parallel()
		page := request(browser)
		page.Header.Set("Accept", "text/html")
		stream := request(browser)
		stream.Header.Set("Accept", "text/event-stream")
		stream.Header.Set("Accept-Encoding", "gzip")

		assert.Equal(t, fingerprint.Generate(page), fingerprint.Generate(stream))
	})

	t.Run("different browsers differ", func(t *testing.T) {
		t.Parallel()
		other := request(map[string]string{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
			"Accept-Language": "en-US,en;q=0.9",
		})
		assert.NotEqual(t, fingerprint.Generate(request(browser)), fingerprint.Generate(other))
	})

	t.Run("no identifying headers", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Del("User-Agent")
		assert.Empty(t, fingerprint.Generate(r))
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	r := request(map[string]string{"User-Agent": "curl/8.0"})
	fp := fingerprint.Generate(r)

	assert.True(t, fingerprint.Validate(r, fp))
	assert.False(t, fingerprint.Validate(request(map[string]string{"User-Agent": "curl/9.0"}), fp))
}

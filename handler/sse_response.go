package handler

import (
	"net/http"
)

// SSEHandler runs for the lifetime of a datastar stream and should return
// once stream.Done is closed.
type SSEHandler func(stream StreamContext) error

// SSE opens a datastar stream and hands it to h. Plain requests get 400.
func SSE(h SSEHandler) Response {
	return ResponseFunc(func(w http.ResponseWriter, r *http.Request) error {
		if !IsDataStar(r) {
			return NewHTTPError(http.StatusBadRequest, "This endpoint requires a datastar connection.")
		}

		base := NewContext(w, r)
		sse := base.SSE()
		if sse == nil {
			return ErrSSENotInitialized
		}
		return h(&streamContext{Context: base, sse: sse})
	})
}

package handler

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNilResponse       = errors.New("handler: nil response")
	ErrSSENotInitialized = errors.New("handler: SSE not initialized for this request")
)

// HTTPError carries a status code and a user-facing message.
type HTTPError struct {
	Code    int
	Message string
	Err     error
}

func (e HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e HTTPError) Unwrap() error { return e.Err }

// NewHTTPError builds an HTTPError; message defaults to the status text.
func NewHTTPError(code int, message string) HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	return HTTPError{Code: code, Message: message}
}

// BadRequest marks err as the client's fault.
func BadRequest(err error) error {
	return HTTPError{Code: http.StatusBadRequest, Message: "The submitted data could not be read.", Err: err}
}

// Fail returns a Response that hands err to the error handler.
func Fail(err error) Response {
	return ResponseFunc(func(http.ResponseWriter, *http.Request) error { return err })
}

// Package httperr provides errors that carry an HTTP status code.
//
// Handlers return these to pick the response status explicitly. Any other
// error reaching the server is normalized to a 500 whose payload never
// exposes the original error text.
package httperr

import (
	"errors"
	"net/http"
)

// InternalMessage is the message rendered for every 5xx response.
const InternalMessage = "An internal server error occurred"

// Error is an HTTP error with an explicit status code.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is compares by status code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

// IsServer reports whether the error is a 5xx.
func (e *Error) IsServer() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// Payload is the JSON body rendered for an Error.
type Payload struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// Payload returns the client-facing body. Server errors always use
// InternalMessage.
func (e *Error) Payload() Payload {
	text := http.StatusText(e.StatusCode)
	if text == "" {
		text = "Unknown"
	}
	p := Payload{
		StatusCode: e.StatusCode,
		Error:      text,
		Message:    e.Message,
	}
	if e.IsServer() {
		p.Message = InternalMessage
	} else if p.Message == "" {
		p.Message = text
	}
	return p
}

func New(status int, message string) *Error {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	return &Error{StatusCode: status, Message: message}
}

func BadRequest(message string) *Error {
	return &Error{StatusCode: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{StatusCode: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{StatusCode: http.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{StatusCode: http.StatusNotFound, Message: message}
}

func MethodNotAllowed(message string) *Error {
	return &Error{StatusCode: http.StatusMethodNotAllowed, Message: message}
}

func Conflict(message string) *Error {
	return &Error{StatusCode: http.StatusConflict, Message: message}
}

func RequestEntityTooLarge(message string) *Error {
	return &Error{StatusCode: http.StatusRequestEntityTooLarge, Message: message}
}

func UnsupportedMediaType(message string) *Error {
	return &Error{StatusCode: http.StatusUnsupportedMediaType, Message: message}
}

// Internal wraps err as a 500. The wrapped error is kept for logging only.
func Internal(err error) *Error {
	return &Error{StatusCode: http.StatusInternalServerError, Err: err}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var httpErr *Error
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// Wrap returns the structured error carried by err, or err wrapped as a 500.
// Wrap(nil) returns nil.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	if httpErr, ok := As(err); ok {
		return httpErr
	}
	return Internal(err)
}

// StatusCode extracts the status from err, defaulting to 500.
func StatusCode(err error) int {
	if httpErr, ok := As(err); ok {
		return httpErr.StatusCode
	}
	return http.StatusInternalServerError
}

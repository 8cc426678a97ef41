package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// InvalidArgument: malformed input, length violations, references to a
// nonexistent or already-terminal entity, illegal state transitions.
func InvalidArgument(format string, args ...any) error {
	return &ErrorWithStatusCode{Message: fmt.Sprintf(format, args...), StatusCode: http.StatusBadRequest}
}

// Forbidden: the entity exists and the caller is known but lacks the permission.
func Forbidden(format string, args ...any) error {
	return &ErrorWithStatusCode{Message: fmt.Sprintf(format, args...), StatusCode: http.StatusForbidden}
}

// NotFound: the container does not exist or the caller cannot perceive it.
func NotFound(format string, args ...any) error {
	return &ErrorWithStatusCode{Message: fmt.Sprintf(format, args...), StatusCode: http.StatusNotFound}
}

// StatusCode returns the status carried by err, or 500 for anything untyped.
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

func IsInvalidArgument(err error) bool { return StatusCode(err) == http.StatusBadRequest }
func IsForbidden(err error) bool       { return StatusCode(err) == http.StatusForbidden }
func IsNotFound(err error) bool        { return StatusCode(err) == http.StatusNotFound }

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries an HTTP status alongside the message so handlers can hand
// any failure to Err and get the right response.
type Error struct {
	Code int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

func Wrap(code int, msg string, err error) *Error {
	return &Error{Code: code, Msg: msg, Err: err}
}

// ErrMissingChatKey signals a chat handle without a key; the store rejects
// the insert and leaves state untouched.
var ErrMissingChatKey = New(http.StatusBadRequest, "no chat key defined on the new chat handle")

// ErrUnknownChat signals a send against a chat key the store has never seen.
var ErrUnknownChat = New(http.StatusNotFound, "unknown chat key")

func InvalidArg(name string) *Error {
	return New(http.StatusBadRequest, "invalid argument: "+name)
}

func BadRequest(msg string) *Error {
	return New(http.StatusBadRequest, msg)
}

func Unauthorized() *Error {
	return New(http.StatusUnauthorized, "unauthorized")
}

func NotFound() *Error {
	return New(http.StatusNotFound, "not found")
}

func ServerError(err error) *Error {
	return Wrap(http.StatusInternalServerError, "internal error", err)
}

// StatusOf extracts the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}

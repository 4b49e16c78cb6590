// Package apierr attaches an HTTP status and a machine-readable code to an
// error so handlers can render the JSON error envelope without re-classifying
// service failures.
package apierr

import "fmt"

// Error is the transport-facing error. Status and Code feed the envelope,
// Err keeps the cause for logging and unwrapping.
type Error struct {
	Status int
	Code   string
	Err    error
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	default:
		return fmt.Sprintf("api error (%d)", e.Status)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

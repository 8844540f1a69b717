package apperr

import (
	"errors"
	"fmt"
)

// Error codes surfaced to clients through the `error` event and the REST API.
const (
	CodeAuthentication = "authentication_error"
	CodeAuthorization  = "authorization_error"
	CodeNotFound       = "not_found"
	CodePersistence    = "persistence_error"
	CodeBadRequest     = "bad_request"
	CodeInvalidState   = "invalid_state"
)

// Error is the application error type. The realtime layer converts any error
// crossing a handler boundary into a single error event for the initiating
// connection; the REST layer maps codes to HTTP statuses.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code, msg string, cause error) *Error {
	return &Error{Code: code, Message: msg, Err: cause}
}

// Authentication builds an error for a missing or invalid credential.
// Fatal to a realtime connection: it is refused before handler dispatch.
func Authentication(msg string) *Error {
	return newError(CodeAuthentication, msg, nil)
}

// Authorization builds an error for acting on an entity the actor does not
// own or participate in.
func Authorization(msg string) *Error {
	return newError(CodeAuthorization, msg, nil)
}

// NotFound builds an error for operating on a nonexistent entity.
func NotFound(entity string) *Error {
	return newError(CodeNotFound, entity+" not found", nil)
}

// Persistence wraps a failed datastore call.
func Persistence(msg string, cause error) *Error {
	return newError(CodePersistence, msg, cause)
}

// BadRequest builds an error for a malformed or invalid client payload.
func BadRequest(msg string) *Error {
	return newError(CodeBadRequest, msg, nil)
}

// InvalidState builds an error for a state transition the entity's
// lifecycle does not permit. The prior state is left unchanged.
func InvalidState(msg string) *Error {
	return newError(CodeInvalidState, msg, nil)
}

// CodeOf extracts the application error code, falling back to
// CodePersistence for unclassified errors so internals never leak.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodePersistence
}

// MessageOf extracts the client-safe message for err.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal error"
}

// Is reports whether err carries the given application error code.
func Is(err error, code string) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}

// Package apperror defines the error taxonomy shared by the resource
// services. Handlers map the kind to an HTTP status; services never
// return raw gorm or storage errors to the surface.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindValidation: malformed or missing input, caller must correct.
	KindValidation Kind = iota + 1
	// KindAuthentication: missing or invalid token.
	KindAuthentication
	// KindAuthorization: valid identity, insufficient rights.
	KindAuthorization
	// KindNotFound: the id does not resolve, or existence is hidden.
	KindNotFound
	// KindConflict: a state-machine precondition was violated.
	KindConflict
	// KindDependency: a collaborator (DB, object store) failed.
	KindDependency
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind of err, defaulting to KindDependency for
// errors that did not originate in a service.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDependency
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Package errors defines the failure taxonomy shared by the client SDK and
// the dev server. Callers branch on Kind, never on message text.
package errors

import (
	stderrors "errors"
	"fmt"
)

type Kind string

const (
	// KindNetwork covers transport failures, undecodable responses and 5xx
	// statuses: the request never completed or the server could not serve it.
	KindNetwork Kind = "network"
	// KindValidation covers 4xx rejections other than 401/404: the request
	// was understood and refused.
	KindValidation Kind = "validation"
	// KindAuthRequired marks operations that need an authenticated identity.
	KindAuthRequired Kind = "auth_required"
	// KindNotFound marks resources that do not exist or are not visible to
	// the caller.
	KindNotFound Kind = "not_found"
	// KindUnsupported marks operations a record can never support, detected
	// before any network call.
	KindUnsupported Kind = "unsupported_operation"
	// KindInvalidState marks lifecycle misuse, e.g. answering a session that
	// was never started.
	KindInvalidState Kind = "invalid_state"
	// KindUnknown is what KindOf reports for errors this package did not
	// build.
	KindUnknown Kind = "unknown"
)

// Error carries a kind plus the server's message text when one was available.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of err, unwrapping as needed.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) && e != nil {
		return e.Kind
	}
	return KindUnknown
}

func IsNetwork(err error) bool      { return KindOf(err) == KindNetwork }
func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsAuthRequired(err error) bool { return KindOf(err) == KindAuthRequired }
func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsUnsupported(err error) bool  { return KindOf(err) == KindUnsupported }
func IsInvalidState(err error) bool { return KindOf(err) == KindInvalidState }

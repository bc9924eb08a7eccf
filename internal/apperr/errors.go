// Package apperr holds the error taxonomy shared by the order and tab
// services. Handlers map a Kind to an HTTP status; nothing below the handler
// layer knows about HTTP.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidArgument
	KindNotFound
	KindForbidden
	KindPreconditionFailed
	KindInvalidTransition
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation error"
	case KindInvalidArgument:
		return "invalid argument"
	case KindNotFound:
		return "not found"
	case KindForbidden:
		return "forbidden"
	case KindPreconditionFailed:
		return "precondition failed"
	case KindInvalidTransition:
		return "invalid transition"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a typed failure. Message is safe to show to callers; Err is the
// underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind alone, e.g. errors.Is(err, apperr.Conflict).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	Validation         = &Error{Kind: KindValidation}
	InvalidArgument    = &Error{Kind: KindInvalidArgument}
	NotFound           = &Error{Kind: KindNotFound}
	Forbidden          = &Error{Kind: KindForbidden}
	PreconditionFailed = &Error{Kind: KindPreconditionFailed}
	InvalidTransition  = &Error{Kind: KindInvalidTransition}
	Conflict           = &Error{Kind: KindConflict}
	Internal           = &Error{Kind: KindInternal}
)

func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap marks err as an internal failure of op.
func Wrap(op string, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage is the text a caller may see. Internal failures never expose
// their cause.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return "internal server error"
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}

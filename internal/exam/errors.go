package exam

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of an exam operation.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindInvalidState
	KindIntegrity
	KindNotFound
	KindNotCompleted
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindInvalidState:
		return "invalid_state"
	case KindIntegrity:
		return "integrity"
	case KindNotFound:
		return "not_found"
	case KindNotCompleted:
		return "not_completed"
	default:
		return "internal"
	}
}

// Error is a classified exam failure. Op names the operation, Detail is safe to show a user.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Detail == ""
}

var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrInvalidState  = &Error{Kind: KindInvalidState}
	ErrIntegrity     = &Error{Kind: KindIntegrity}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrNotCompleted  = &Error{Kind: KindNotCompleted}
)

func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the classification of err, KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// DetailOf returns the user-facing detail of a classified error.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Detail != "" {
		return e.Detail
	}
	return err.Error()
}

package crossquery

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrConfig   ErrorKind = "config"
	ErrRejected ErrorKind = "rejected"
	ErrStore    ErrorKind = "store"
	ErrIO       ErrorKind = "io"
	ErrNotFound ErrorKind = "not_found"
)

type Error struct {
	Kind     ErrorKind
	Message  string
	Property string
	Cause    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Property != "" {
		base = fmt.Sprintf("%s (property=%s)", base, e.Property)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func ConfigError(msg string) *Error {
	return &Error{Kind: ErrConfig, Message: msg}
}

func RejectedError(property, msg string) *Error {
	return &Error{Kind: ErrRejected, Property: property, Message: msg}
}

func NotFoundError(kind, key string) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("entity not found: %s/%s", kind, key)}
}

func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// passthrough returns err unchanged when it already carries a kind, so
// backend failures reach the caller untranslated; anything else is wrapped
// as a store failure.
func passthrough(msg string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Wrap(ErrStore, msg, err)
}

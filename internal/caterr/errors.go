// Package caterr defines the classified error taxonomy shared by every
// layer of the engine. Validation and call-boundary failures are
// returned as *Error, never panicked.
package caterr

import (
	"errors"
	"fmt"
)

// Kind names one of the engine's failure categories.
type Kind string

const (
	InvalidConfig    Kind = "invalid_config"
	InvalidOperator  Kind = "invalid_operator"
	ArgumentMismatch Kind = "argument_mismatch"
	RedundantKeys    Kind = "redundant_keys"
	MissingKeys      Kind = "missing_keys"
	DuplicateCatName Kind = "duplicate_cat_name"
	UnknownCat       Kind = "unknown_cat"
)

// Error is the concrete classified error type every package in this
// module returns for a validation or call-boundary failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds a classified error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

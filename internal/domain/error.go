package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error. The HTTP layer maps kinds to status codes;
// nothing below it knows about transports.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindDispatch     Kind = "dispatch"
	KindStore        Kind = "store"
)

var (
	// Common domain errors, one per kind. Match with errors.Is.
	ErrValidation   = &Error{Kind: KindValidation, Msg: "validation failed"}
	ErrNotFound     = &Error{Kind: KindNotFound, Msg: "subscription not found"}
	ErrForbidden    = &Error{Kind: KindForbidden, Msg: "forbidden"}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Msg: "unauthorized"}
	ErrDispatch     = &Error{Kind: KindDispatch, Msg: "reminder dispatch failed"}
	ErrStore        = &Error{Kind: KindStore, Msg: "store operation failed"}

	// Store-level details that still classify as KindStore or KindValidation.
	ErrInvalidExecContext = &Error{Kind: KindStore, Msg: "invalid execution context"}
	ErrDuplicate          = &Error{Kind: KindValidation, Msg: "duplicate field value entered"}
)

// Error is the single error type surfaced by the domain, usecases and repositories.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg != "" {
		return e.Msg + ": " + e.Err.Error()
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match on Kind so that any validation error matches ErrValidation.
// Detail sentinels such as ErrDuplicate only match themselves.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t == ErrDuplicate || t == ErrInvalidExecContext {
		return e == t
	}
	return e.Kind == t.Kind
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

func Dispatch(err error) error {
	return &Error{Kind: KindDispatch, Msg: ErrDispatch.Msg, Err: err}
}

func Store(op string, err error) error {
	return &Error{Kind: KindStore, Msg: op, Err: err}
}

// KindOf returns the kind of err, or KindStore for anything unclassified.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStore
}

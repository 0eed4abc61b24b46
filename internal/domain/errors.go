package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindPermission
	KindNotFound
	KindConflict
	KindUnauthenticated
)

var (
	ErrValidation      = errors.New("validation error")
	ErrPermission      = errors.New("permission denied")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("state conflict")
	ErrUnauthenticated = errors.New("authentication required")
)

// Error is returned by services for every caller-facing failure.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindValidation:
		return target == ErrValidation
	case KindPermission:
		return target == ErrPermission
	case KindNotFound:
		return target == ErrNotFound
	case KindConflict:
		return target == ErrConflict
	case KindUnauthenticated:
		return target == ErrUnauthenticated
	}
	return false
}

func Validation(field, msg string) error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindPermission, Message: msg}
}

func NotFound(entity string) error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Conflict marks a lost race on a state transition; callers may retry.
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Unauthenticated(msg string) error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error so handlers can map it to an HTTP status
// without string matching.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindInvalidState
	KindInvalidTransition
	KindInvalidLayout
)

type Error struct {
	Kind    Kind
	Message string
	// Fields lists every offending field for layout validation errors.
	Fields []string
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return e.Message + ": " + strings.Join(e.Fields, "; ")
	}
	return e.Message
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransition(current, requested string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("invalid status transition from %q to %q", current, requested),
	}
}

func InvalidLayout(fields []string) *Error {
	return &Error{Kind: KindInvalidLayout, Message: "invalid layout", Fields: fields}
}

// KindOf returns the kind of err, or KindInternal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool     { return KindOf(err) == KindConflict }
func IsInvalidState(err error) bool { return KindOf(err) == KindInvalidState }

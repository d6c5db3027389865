package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies user-facing failures.
type ErrorKind string

const (
	NoInput          ErrorKind = "NoInput"
	InvalidURL       ErrorKind = "InvalidURL"
	EmptyExport      ErrorKind = "EmptyExport"
	MissingSelection ErrorKind = "MissingSelection"
	IncompleteField  ErrorKind = "IncompleteField"
	Busy             ErrorKind = "Busy"
)

// Error is a recoverable failure shown to the user as a single message.
type Error struct {
	Kind    ErrorKind
	Message string
	// Field names the offending form field, if any.
	Field string
	// URLs lists the offending URLs for InvalidURL.
	URLs []string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds an Error with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// FieldError builds an Error bound to a form field.
func FieldError(kind ErrorKind, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidURLError reports every offending URL in one message.
func InvalidURLError(urls []string) *Error {
	return &Error{
		Kind:    InvalidURL,
		Message: "invalid URL(s): " + strings.Join(urls, ", "),
		URLs:    append([]string(nil), urls...),
	}
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"slices"
)

// PlatformError is implemented by every error produced by this module.
// Use As to extract it from a wrapped chain.
type PlatformError interface {
	error

	// Code returns the classification of the error.
	Code() ErrorCode

	// Message returns the human readable message without the cause.
	Message() string

	// Context returns the diagnostic key/value pairs attached to the error.
	Context() map[string]interface{}

	// Unwrap returns the underlying cause, if any.
	Unwrap() error
}

// Error is the concrete PlatformError.
type Error struct {
	code    ErrorCode
	message string
	context map[string]interface{}
	cause   error
}

var _ PlatformError = (*Error)(nil)

// New creates an error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf creates an error with the given code and a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap wraps cause with a code and message. A nil cause still produces an error.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{code: code, message: message, cause: cause}
}

// WrapWithContext wraps cause and attaches diagnostic context.
func WrapWithContext(cause error, code ErrorCode, message string, ctx map[string]interface{}) *Error {
	e := Wrap(cause, code, message)
	if len(ctx) > 0 {
		e.context = maps.Clone(ctx)
	}
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code implements PlatformError.
func (e *Error) Code() ErrorCode { return e.code }

// Message implements PlatformError.
func (e *Error) Message() string { return e.message }

// Context implements PlatformError. The returned map is a copy.
func (e *Error) Context() map[string]interface{} {
	if e.context == nil {
		return map[string]interface{}{}
	}
	return maps.Clone(e.context)
}

// Unwrap implements PlatformError.
func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is a Class containing e's code, or an Error with
// the same code and message and no cause of its own.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Class:
		return t != nil && t.Contains(e.code)
	case *Error:
		return t != nil && t.cause == nil && t.code == e.code && t.message == e.message
	}
	return false
}

// WithContext returns a copy of e with key set to value in its context.
func (e *Error) WithContext(key string, value interface{}) *Error {
	c := *e
	c.context = maps.Clone(e.context)
	if c.context == nil {
		c.context = make(map[string]interface{}, 1)
	}
	c.context[key] = value
	return &c
}

// GetCode returns the code of the first PlatformError in err's chain, or
// CodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var pe PlatformError
	if stderrors.As(err, &pe) {
		return pe.Code()
	}
	return CodeUnknown
}

// HasCode reports whether any PlatformError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if pe, ok := err.(PlatformError); ok && pe.Code() == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Class groups codes under one name so callers can test membership with Is.
type Class struct {
	name  string
	codes []ErrorCode
}

// NewClass creates a Class matching any of codes.
func NewClass(name string, codes ...ErrorCode) *Class {
	return &Class{name: name, codes: codes}
}

// Error implements the error interface.
func (c *Class) Error() string { return c.name }

// Contains reports whether code belongs to the class.
func (c *Class) Contains(code ErrorCode) bool {
	return slices.Contains(c.codes, code)
}

// Is is errors.Is from the standard library.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As is errors.As from the standard library.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

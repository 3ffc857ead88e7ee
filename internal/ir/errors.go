package ir

import (
	"errors"
	"fmt"
)

// Error represents an invalid request detected while building, executing
// or folding a query.
//
// Errors include:
//   - Invalid or malformed URIs
//   - A raw value passed where a resource handle is required
//   - A symbolic attribute with no discoverable predicate
//   - A missing resource or result set where one was mandatory
//   - A cyclic class hierarchy found during discovery
//
// Zero rows is never an Error; it folds to an absent result.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// URI is the offending identifier, when one is known.
	URI string

	// Path holds the class URIs of a detected schema cycle.
	Path []string
}

// ErrorCode categorizes errors.
type ErrorCode string

const (
	// CodeInvalidURI indicates an empty or structurally broken identifier.
	CodeInvalidURI ErrorCode = "INVALID_URI"

	// CodeMalformedURI indicates a URI with no local-name separator.
	CodeMalformedURI ErrorCode = "MALFORMED_URI"

	// CodeTypeMismatch indicates a value of the wrong node kind.
	CodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// CodeUnknownAttribute indicates a symbolic attribute with no predicate.
	CodeUnknownAttribute ErrorCode = "UNKNOWN_ATTRIBUTE"

	// CodeNilResource indicates a required resource was absent.
	CodeNilResource ErrorCode = "NIL_RESOURCE"

	// CodeNilResult indicates the execution layer returned no result set.
	CodeNilResult ErrorCode = "NIL_RESULT"

	// CodeSchemaCycle indicates a cyclic subClassOf chain.
	CodeSchemaCycle ErrorCode = "SCHEMA_CYCLE"
)

// Sentinel errors for errors.Is matching. Matching compares codes only.
var (
	ErrInvalidURI       = &Error{Code: CodeInvalidURI}
	ErrMalformedURI     = &Error{Code: CodeMalformedURI}
	ErrTypeMismatch     = &Error{Code: CodeTypeMismatch}
	ErrUnknownAttribute = &Error{Code: CodeUnknownAttribute}
	ErrNilResource      = &Error{Code: CodeNilResource}
	ErrNilResult        = &Error{Code: CodeNilResult}
	ErrSchemaCycle      = &Error{Code: CodeSchemaCycle}
)

// NewError creates an Error.
func NewError(code ErrorCode, message, uri string) *Error {
	return &Error{Code: code, Message: message, URI: uri}
}

// Errorf creates an Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewCycleError creates an Error for a cyclic subClassOf chain.
// path lists the class URIs from the first repeated class back to itself.
func NewCycleError(path []string) *Error {
	return &Error{
		Code:    CodeSchemaCycle,
		Message: "class hierarchy contains a subClassOf cycle",
		URI:     path[len(path)-1],
		Path:    path,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s: %s (path=%v)", e.Code, e.Message, e.Path)
	}
	if e.URI != "" {
		return fmt.Sprintf("%s: %s (uri=%s)", e.Code, e.Message, e.URI)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

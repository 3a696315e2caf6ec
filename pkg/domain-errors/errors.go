// Package domainerrors defines the code-carrying error type used across service
// boundaries. Services attach a Code so transport layers can map failures to
// responses without inspecting error strings, and callers can branch on kind
// with HasCode instead of catching exceptions.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a failure for callers and the transport layer.
type Code string

const (
	// CodeNotFound: requested record or mapping absent. Surfaced, never retried.
	CodeNotFound Code = "not_found"
	// CodeInvalidInput: malformed identifier or request field. Client error.
	CodeInvalidInput Code = "invalid_input"
	// CodeValidation: domain validation failed (e.g. justification over length).
	CodeValidation Code = "validation_failed"
	// CodeUpstream: income source returned non-2xx or a malformed body.
	CodeUpstream Code = "upstream_failure"
	// CodeUpstreamTimeout: income source deadline exceeded. Distinct from
	// CodeUpstream so callers can treat slowness differently from rejection.
	CodeUpstreamTimeout Code = "upstream_timeout"
	// CodeStore: transactional or connectivity failure in the income store.
	CodeStore Code = "store_failure"

	CodeUnauthorized Code = "unauthorized"
	CodeBadRequest   Code = "bad_request"
	CodeInternal     Code = "internal"
)

// Error is the concrete error carried between layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message while keeping the chain intact.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Copyright 2026 Greenleaf Labs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package apierrors provides the structured error taxonomy shared by every
// component of the catalog service.
//
// Every component surfaces a *ServiceError to its immediate caller rather
// than a bare error. The ingestion coordinator and HTTP boundary (out of
// scope here) map a ServiceError's Kind to a status code and an envelope;
// nothing downstream needs to re-derive that mapping.
package apierrors

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
)

// Kind classifies a ServiceError so callers can branch on category without
// string-matching messages.
type Kind int

const (
	// Internal indicates an unhandled, unexpected failure. Detail is elided
	// in production builds by the HTTP boundary.
	Internal Kind = iota

	// InputMalformed indicates a bad spreadsheet, bad JSON payload, or a
	// missing required field. Field names the offending input when known.
	InputMalformed

	// UpstreamUnavailable indicates the JSON feed URL was unreachable or
	// timed out.
	UpstreamUnavailable

	// NotFound indicates an unknown filename in the job registry, or a
	// product/strain absent from both the catalog and the table.
	NotFound

	// PreconditionFailed indicates a generation request with no selection,
	// or a filter referencing an unknown column.
	PreconditionFailed

	// RateLimited indicates the per-IP token bucket was empty.
	RateLimited

	// Timeout indicates a generation request exceeded its soft timeout.
	Timeout

	// Conflict indicates a concurrent upload of the same filename. Per
	// spec this is last-write-wins and is informational, not fatal.
	Conflict
)

// httpStatus is the status code each Kind maps to at the HTTP boundary.
var httpStatus = map[Kind]int{
	Internal:            500,
	InputMalformed:      400,
	UpstreamUnavailable: 503,
	NotFound:            404,
	PreconditionFailed:  400,
	RateLimited:         429,
	Timeout:             408,
	Conflict:            200,
}

func (k Kind) String() string {
	switch k {
	case InputMalformed:
		return "input_malformed"
	case UpstreamUnavailable:
		return "upstream_unavailable"
	case NotFound:
		return "not_found"
	case PreconditionFailed:
		return "precondition_failed"
	case RateLimited:
		return "rate_limited"
	case Timeout:
		return "timeout"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus returns the status code this Kind maps to at the HTTP boundary.
func (k Kind) HTTPStatus() int {
	if s, ok := httpStatus[k]; ok {
		return s
	}
	return 500
}

// ServiceError carries structured context about a failure: what went wrong,
// which field (if any) caused it, and what kind of failure it is.
type ServiceError struct {
	// Kind classifies the error for status-code mapping and caller branching.
	Kind Kind

	// Message describes what went wrong in terms a caller can surface.
	Message string

	// Field names the offending input field, when applicable (InputMalformed,
	// PreconditionFailed). Empty when not field-specific.
	Field string

	// Err is the underlying error, if any, enabling errors.Is/errors.As.
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap enables errors.Is/errors.As against the wrapped error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// New builds a ServiceError of the given kind.
func New(kind Kind, message string, err error) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Err: err}
}

// NewField builds a field-scoped ServiceError, typically InputMalformed or
// PreconditionFailed.
func NewField(kind Kind, message, field string) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Field: field}
}

// NotFoundf builds a NotFound ServiceError with a formatted message.
func NotFoundf(format string, args ...any) *ServiceError {
	return &ServiceError{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// InputMalformedf builds an InputMalformed ServiceError with a formatted
// message and the offending field name.
func InputMalformedf(field, format string, args ...any) *ServiceError {
	return &ServiceError{Kind: InputMalformed, Message: fmt.Sprintf(format, args...), Field: field}
}

// Internalf builds an Internal ServiceError wrapping err.
func Internalf(err error, format string, args ...any) *ServiceError {
	return &ServiceError{Kind: Internal, Message: fmt.Sprintf(format, args...), Err: err}
}

// colorError/colorField mirror the teacher's terminal formatting and are
// used only by Format.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorField = color.New(color.FgYellow)
)

// Format renders the error for terminal display in the admin CLI.
func (e *ServiceError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()
	if noColor {
		color.NoColor = true
	}

	out := colorError.Sprintf("Error [%s]: ", e.Kind) + e.Message
	if e.Field != "" {
		out += "\n" + colorField.Sprint("Field: ") + e.Field
	}
	return out
}

// As reports whether err is (or wraps) a *ServiceError, returning it.
func As(err error) (*ServiceError, bool) {
	var se *ServiceError
	if e, ok := err.(*ServiceError); ok {
		return e, true
	}
	if errorsAs(err, &se) {
		return se, true
	}
	return nil, false
}

// errorsAs walks err's Unwrap chain for a *ServiceError by hand, so this
// file needs no import of the standard "errors" package.
func errorsAs(err error, target **ServiceError) bool {
	for err != nil {
		if se, ok := err.(*ServiceError); ok {
			*target = se
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// MarshalJSON customizes JSON rendering so Kind serializes as its string name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}
